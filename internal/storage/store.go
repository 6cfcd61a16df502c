package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/decaysim/internal/decay"
)

const (
	metadataFile = "metadata.json"
	latticeFile  = "lattice.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string    `json:"id"`
	Preset           string    `json:"preset,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Seed             uint64    `json:"seed"`
	DecayConst       float64   `json:"decay_const"`
	Size             int       `json:"size"`
	Timestep         float64   `json:"timestep"`
	Probability      float64   `json:"probability"`
	Workers          int       `json:"workers"`
	Steps            int       `json:"steps"`
	Threshold        int       `json:"threshold"`
	InitialUndecayed int       `json:"initial_undecayed"`
	FinalUndecayed   int       `json:"final_undecayed"`
	HalfTime         float64   `json:"half_time"`
	ExpectedHalfTime float64   `json:"expected_half_time"`
	Unit             string    `json:"unit,omitempty"`
}

// NewRunMetadata captures the parameters and outcome of a finished simulation.
func NewRunMetadata(sim *decay.Simulation, halfTime float64, workers int) RunMetadata {
	return RunMetadata{
		Seed:             sim.Seed(),
		DecayConst:       sim.DecayConst(),
		Size:             sim.Size(),
		Timestep:         sim.Timestep(),
		Probability:      sim.Probability(),
		Workers:          workers,
		Steps:            sim.Steps(),
		Threshold:        sim.Threshold(),
		InitialUndecayed: sim.Initial(),
		FinalUndecayed:   sim.Undecayed(),
		HalfTime:         halfTime,
		ExpectedHalfTime: decay.ExpectedHalfTime(sim.DecayConst()),
	}
}

// Save writes the metadata and final lattice under a fresh run directory
// and returns its id.
func (s *Store) Save(meta RunMetadata, lattice *decay.Lattice) (string, error) {
	ts := s.now()
	if err := s.Init(); err != nil {
		return "", err
	}

	base := fmt.Sprintf("decay_%d_%d", ts.Unix(), meta.Seed%100000)
	runID := base
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; ; i++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	meta.ID = runID
	meta.Timestamp = ts

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if lattice == nil {
		return runID, nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, latticeFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	row := make([]string, lattice.Size())
	for r := 0; r < lattice.Size(); r++ {
		for c, n := range lattice.Row(r) {
			row[c] = n.String()
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadLattice reads the final lattice of a run as rows of 0/1 values.
func (s *Store) LoadLattice(runID string) ([][]int, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, latticeFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]int, 0, len(records))
	for i, record := range records {
		row := make([]int, len(record))
		for j, field := range record {
			v, err := strconv.Atoi(field)
			if err != nil || (v != 0 && v != 1) {
				return nil, fmt.Errorf("lattice row %d col %d: invalid cell %q", i, j, field)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return rows, nil
}
