package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/decaysim/internal/decay"
)

func finishedSim(t *testing.T) (*decay.Simulation, float64) {
	t.Helper()
	sim, err := decay.New(0.5, 6, 0.1, decay.WithSeed(42))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	h, err := sim.FindHalfTime(context.Background())
	if err != nil {
		t.Fatalf("find half time failed: %v", err)
	}
	return sim, h
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sim, h := finishedSim(t)
	meta := NewRunMetadata(sim, h, 1)

	runID, err := st.Save(meta, sim.Lattice())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.HalfTime != h {
		t.Errorf("expected half time %f, got %f", h, loaded.HalfTime)
	}
	if loaded.FinalUndecayed != sim.Undecayed() || loaded.InitialUndecayed != 36 {
		t.Errorf("unexpected counts %d -> %d", loaded.InitialUndecayed, loaded.FinalUndecayed)
	}

	rows, err := st.LoadLattice(runID)
	if err != nil {
		t.Fatalf("load lattice failed: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	ones := 0
	for r, row := range rows {
		if len(row) != 6 {
			t.Fatalf("row %d: expected 6 cells, got %d", r, len(row))
		}
		for c, v := range row {
			if decay.Nucleus(v) != sim.Lattice().At(r, c) {
				t.Errorf("cell (%d,%d) mismatch", r, c)
			}
			ones += v
		}
	}
	if ones != sim.Undecayed() {
		t.Errorf("expected %d undecayed cells, got %d", sim.Undecayed(), ones)
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	fixed := time.Unix(1700000000, 0)
	st.now = func() time.Time { return fixed }

	sim, h := finishedSim(t)
	meta := NewRunMetadata(sim, h, 1)

	a, err := st.Save(meta, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	b, err := st.Save(meta, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if a == b {
		t.Errorf("expected distinct run ids, both %s", a)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	sim, h := finishedSim(t)
	for i := 0; i < 3; i++ {
		st.now = func() time.Time { return time.Unix(int64(1700000000+i), 0) }
		if _, err := st.Save(NewRunMetadata(sim, h, 1), nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Error("runs should be sorted by timestamp")
		}
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nonexistent"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	sim, h := finishedSim(t)

	runID, err := st.Save(NewRunMetadata(sim, h, 2), sim.Lattice())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != runID {
		t.Errorf("expected id %s, got %s", runID, data.ID)
	}
	if data.Workers != 2 {
		t.Errorf("expected workers 2, got %d", data.Workers)
	}
	if len(data.Lattice) != 6 {
		t.Errorf("expected 6 lattice rows, got %d", len(data.Lattice))
	}
}
