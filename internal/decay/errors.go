package decay

import (
	"errors"
	"fmt"
)

// Domain errors for decay simulations.
var (
	// ErrInvalidParameter indicates a construction argument outside its valid range.
	ErrInvalidParameter = errors.New("decay: invalid parameter")

	// ErrSimulationStalled indicates the half-population threshold could not be reached.
	ErrSimulationStalled = errors.New("decay: simulation stalled before reaching half population")
)

// ParameterError names the offending argument of a rejected construction.
type ParameterError struct {
	Name  string
	Value float64
	Rule  string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%g (%s)", ErrInvalidParameter, e.Name, e.Value, e.Rule)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// StallError records where FindHalfTime gave up.
type StallError struct {
	Step      int
	Time      float64
	Undecayed int
	Threshold int
	Reason    string
}

func (e *StallError) Error() string {
	return fmt.Sprintf("%v: step %d (t=%.4f): %d undecayed, threshold %d: %s",
		ErrSimulationStalled, e.Step, e.Time, e.Undecayed, e.Threshold, e.Reason)
}

func (e *StallError) Unwrap() error {
	return ErrSimulationStalled
}
