package decay

import (
	"math/rand/v2"
	"sync"
)

// minRowsPerWorker keeps small lattices on the sequential path.
const minRowsPerWorker = 8

// partitions splits [0, n) into at most workers contiguous chunks of at
// least minChunk items each.
func partitions(n, workers, minChunk int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		return [][2]int{{0, n}}
	}

	chunkSize := (n + workers - 1) / workers
	parts := make([][2]int, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		parts = append(parts, [2]int{start, end})
	}
	return parts
}

// parallelRows runs fn over row partitions concurrently. Each partition gets
// its own PCG stream seeded from rng before any goroutine starts, so the
// outcome depends only on rng's state and the partitioning. The returned
// slice holds each partition's result in partition order.
func parallelRows(rng *rand.Rand, rows, workers int, fn func(r *rand.Rand, start, end int) int) []int {
	parts := partitions(rows, workers, minRowsPerWorker)
	results := make([]int, len(parts))

	if len(parts) == 1 {
		results[0] = fn(rng, 0, rows)
		return results
	}

	streams := make([]*rand.Rand, len(parts))
	for i := range streams {
		streams[i] = rand.New(rand.NewPCG(rng.Uint64(), uint64(i)))
	}

	var wg sync.WaitGroup
	wg.Add(len(parts))
	for i, p := range parts {
		go func(idx, s, e int) {
			defer wg.Done()
			results[idx] = fn(streams[idx], s, e)
		}(i, p[0], p[1])
	}
	wg.Wait()

	return results
}
