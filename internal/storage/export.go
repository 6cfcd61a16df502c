package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Lattice [][]int `json:"lattice,omitempty"`
}

// ExportJSON writes a run's metadata and final lattice to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	rows, err := s.LoadLattice(runID)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Lattice: rows})
}
