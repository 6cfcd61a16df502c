package decay

import (
	"context"
	"math"
	"sync"
)

// Params groups the construction arguments shared by every ensemble run.
type Params struct {
	DecayConst float64
	Size       int
	Timestep   float64
	Workers    int
	MaxSteps   int
}

// Ensemble repeats a simulation with consecutive seeds.
type Ensemble struct {
	params    Params
	numRuns   int
	seedStart uint64
}

// EnsembleResult collects the half-time of every run in seed order.
type EnsembleResult struct {
	HalfTimes []float64
	Mean      float64
	StdDev    float64
	Expected  float64
}

func NewEnsemble(p Params, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{params: p, numRuns: numRuns, seedStart: seedStart}
}

// Run executes every run concurrently; run i uses seed seedStart+i.
func (e *Ensemble) Run(ctx context.Context) (*EnsembleResult, error) {
	if e.numRuns <= 0 {
		return nil, &ParameterError{Name: "runs", Value: float64(e.numRuns), Rule: "must be a positive integer"}
	}
	if _, err := e.newSim(e.seedStart); err != nil {
		return nil, err
	}

	halfTimes := make([]float64, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := e.newSim(e.seedStart + uint64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			halfTimes[idx], errs[idx] = s.FindHalfTime(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	mean, std := meanStd(halfTimes)
	return &EnsembleResult{
		HalfTimes: halfTimes,
		Mean:      mean,
		StdDev:    std,
		Expected:  ExpectedHalfTime(e.params.DecayConst),
	}, nil
}

func (e *Ensemble) newSim(seed uint64) (*Simulation, error) {
	return New(e.params.DecayConst, e.params.Size, e.params.Timestep,
		WithSeed(seed),
		WithWorkers(e.params.Workers),
		WithMaxSteps(e.params.MaxSteps),
	)
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if len(xs) == 1 {
		return mean, 0
	}
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}
