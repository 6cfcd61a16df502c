package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suggested values for Iodine-128, in minutes.
const (
	DefaultDecayConst = 0.02775
	DefaultSize       = 50
	DefaultTimestep   = 0.01
	DefaultRuns       = 20
	DefaultWorkers    = 1

	// ReferenceHalfTime is the measured Iodine-128 half-life in minutes.
	ReferenceHalfTime = 24.98
)

type Config struct {
	Name       string  `yaml:"name,omitempty"`
	DecayConst float64 `yaml:"decay_const"`
	Size       int     `yaml:"size"`
	Timestep   float64 `yaml:"timestep"`
	Seed       uint64  `yaml:"seed"`
	Workers    int     `yaml:"workers"`
	MaxSteps   int     `yaml:"max_steps"`
	Runs       int     `yaml:"runs"`
	Unit       string  `yaml:"unit"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "iodine128",
		DecayConst: DefaultDecayConst,
		Size:       DefaultSize,
		Timestep:   DefaultTimestep,
		Workers:    DefaultWorkers,
		Runs:       DefaultRuns,
		Unit:       "min",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values a run needs before any simulation is built.
func (c *Config) Validate() error {
	if c.DecayConst <= 0 {
		return fmt.Errorf("decay_const must be positive, got %f", c.DecayConst)
	}
	if c.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", c.Size)
	}
	if c.Timestep <= 0 {
		return fmt.Errorf("timestep must be positive, got %f", c.Timestep)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	if c.Runs < 0 {
		return fmt.Errorf("runs must not be negative, got %d", c.Runs)
	}
	return nil
}
