package decay

import "strings"

// Nucleus is the state of a single lattice cell.
type Nucleus uint8

const (
	Decayed   Nucleus = 0
	Undecayed Nucleus = 1
)

func (n Nucleus) String() string {
	if n == Undecayed {
		return "1"
	}
	return "0"
}

// Lattice stores an N×N grid of nuclei in row-major order.
type Lattice struct {
	n     int
	cells []Nucleus
}

// NewLattice allocates a size×size lattice with every nucleus undecayed.
func NewLattice(size int) *Lattice {
	if size < 0 {
		size = 0
	}
	cells := make([]Nucleus, size*size)
	for i := range cells {
		cells[i] = Undecayed
	}
	return &Lattice{n: size, cells: cells}
}

// Size returns N.
func (l *Lattice) Size() int { return l.n }

// Len returns the number of cells, N².
func (l *Lattice) Len() int { return len(l.cells) }

// Index returns the linear slice index for (row, col).
func (l *Lattice) Index(row, col int) int { return row*l.n + col }

// At returns the nucleus at (row, col).
func (l *Lattice) At(row, col int) Nucleus { return l.cells[l.Index(row, col)] }

// Cells exposes the backing slice for read-only iteration.
func (l *Lattice) Cells() []Nucleus { return l.cells }

// Row returns the cells of a single row.
func (l *Lattice) Row(row int) []Nucleus {
	start := row * l.n
	return l.cells[start : start+l.n]
}

// Count rescans the lattice and returns the number of undecayed cells.
func (l *Lattice) Count() int {
	count := 0
	for _, c := range l.cells {
		if c == Undecayed {
			count++
		}
	}
	return count
}

// Clone returns an independent copy.
func (l *Lattice) Clone() *Lattice {
	c := make([]Nucleus, len(l.cells))
	copy(c, l.cells)
	return &Lattice{n: l.n, cells: c}
}

// String renders one line per row with space-separated 0/1 tokens.
func (l *Lattice) String() string {
	var b strings.Builder
	b.Grow(len(l.cells) * 2)
	for row := 0; row < l.n; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col, c := range l.Row(row) {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(c.String())
		}
	}
	return b.String()
}
