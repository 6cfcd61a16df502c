package decay

import "testing"

func TestNewLattice(t *testing.T) {
	l := NewLattice(3)
	if l.Size() != 3 || l.Len() != 9 {
		t.Fatalf("expected 3x3 lattice, got size %d len %d", l.Size(), l.Len())
	}
	if l.Count() != 9 {
		t.Errorf("expected 9 undecayed, got %d", l.Count())
	}
	if l.String() != "1 1 1\n1 1 1\n1 1 1" {
		t.Errorf("unexpected rendering %q", l.String())
	}
}

func TestLatticeIndexing(t *testing.T) {
	l := NewLattice(4)
	l.cells[l.Index(2, 1)] = Decayed

	if l.At(2, 1) != Decayed {
		t.Error("expected (2,1) decayed")
	}
	if l.Row(2)[1] != Decayed {
		t.Error("row view does not reflect the cell")
	}
	if l.Count() != 15 {
		t.Errorf("expected 15 undecayed, got %d", l.Count())
	}
}

func TestLatticeClone(t *testing.T) {
	l := NewLattice(2)
	c := l.Clone()
	c.cells[0] = Decayed

	if l.At(0, 0) != Undecayed {
		t.Error("clone shares storage with the original")
	}
}

func TestPartitions(t *testing.T) {
	tests := []struct {
		n, workers, minChunk int
		expected             int
	}{
		{100, 4, 8, 4},
		{10, 4, 8, 1},
		{16, 4, 8, 2},
		{100, 1, 8, 1},
		{0, 4, 8, 1},
	}

	for _, tt := range tests {
		parts := partitions(tt.n, tt.workers, tt.minChunk)
		if len(parts) != tt.expected {
			t.Errorf("partitions(%d, %d, %d): expected %d parts, got %d", tt.n, tt.workers, tt.minChunk, tt.expected, len(parts))
		}
		covered := 0
		next := 0
		for _, p := range parts {
			if p[0] != next {
				t.Errorf("partitions(%d, %d, %d): gap or overlap at %d", tt.n, tt.workers, tt.minChunk, p[0])
			}
			covered += p[1] - p[0]
			next = p[1]
		}
		if covered != tt.n {
			t.Errorf("partitions(%d, %d, %d): covered %d items", tt.n, tt.workers, tt.minChunk, covered)
		}
	}
}
