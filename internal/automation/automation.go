package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/decaysim/internal/config"
	"github.com/san-kum/decaysim/internal/decay"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of decay runs
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Steps       []config.Config `yaml:"steps"`
}

// StepResult is the outcome of one scenario step
type StepResult struct {
	Config    config.Config
	HalfTime  float64
	Steps     int
	Undecayed int
	Expected  float64
}

// LoadScenario loads a scenario from a YAML file. Steps start from the
// default config, so a step only lists the values it changes.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Steps       []yaml.Node `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	scenario := &Scenario{Name: raw.Name, Description: raw.Description}
	for i := range raw.Steps {
		cfg := config.DefaultConfig()
		if err := raw.Steps[i].Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		scenario.Steps = append(scenario.Steps, *cfg)
	}

	return scenario, nil
}

// RunScenario executes all steps in order, writing a progress line per step
// to progress when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, progress io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if progress != nil {
			fmt.Fprintf(progress, "Running step %d/%d: λ=%g N=%d Δt=%g\n", i+1, len(scenario.Steps), step.DecayConst, step.Size, step.Timestep)
		}

		if err := step.Validate(); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		opts := []decay.Option{decay.WithWorkers(step.Workers), decay.WithMaxSteps(step.MaxSteps)}
		if step.Seed != 0 {
			opts = append(opts, decay.WithSeed(step.Seed))
		}
		sim, err := decay.New(step.DecayConst, step.Size, step.Timestep, opts...)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		h, err := sim.FindHalfTime(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{
			Config:    step,
			HalfTime:  h,
			Steps:     sim.Steps(),
			Undecayed: sim.Undecayed(),
			Expected:  decay.ExpectedHalfTime(step.DecayConst),
		})
	}

	return results, nil
}

// ParameterSweep runs an ensemble at evenly spaced values of one parameter
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the ensemble statistics for one parameter value
type SweepResult struct {
	ParamValue float64
	Mean       float64
	StdDev     float64
	Expected   float64
}

// RunSweep executes a parameter sweep over decay_const, timestep or size.
// Every point reuses the base seed so points differ only by the parameter.
func RunSweep(ctx context.Context, sweep *ParameterSweep, progress io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if sweep.ParamMax < sweep.ParamMin {
		return nil, fmt.Errorf("sweep range is empty: [%g, %g]", sweep.ParamMin, sweep.ParamMax)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base
		switch sweep.ParamName {
		case "decay_const":
			cfg.DecayConst = paramVal
		case "timestep":
			cfg.Timestep = paramVal
		case "size":
			cfg.Size = int(paramVal + 0.5)
		default:
			return nil, fmt.Errorf("unknown sweep parameter: %s", sweep.ParamName)
		}
		if err := cfg.Validate(); err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, paramVal, err)
		}

		numRuns := cfg.Runs
		if numRuns < 1 {
			numRuns = 1
		}
		ens := decay.NewEnsemble(decay.Params{
			DecayConst: cfg.DecayConst,
			Size:       cfg.Size,
			Timestep:   cfg.Timestep,
			Workers:    cfg.Workers,
			MaxSteps:   cfg.MaxSteps,
		}, numRuns, cfg.Seed)

		res, err := ens.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Mean:       res.Mean,
			StdDev:     res.StdDev,
			Expected:   res.Expected,
		})

		if progress != nil {
			fmt.Fprintf(progress, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
		}
	}

	return results, nil
}
