package decay

import (
	"context"
	"math"
	"math/rand/v2"
)

// Observer is notified after every completed step.
type Observer interface {
	OnStep(step int, t float64, undecayed int)
}

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithSeed fixes the random stream so runs are reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.seed = seed
		s.seeded = true
	}
}

// WithWorkers evaluates each step across up to n goroutines. Results are
// reproducible for a fixed seed and worker count.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxSteps caps the number of steps FindHalfTime may take. Zero keeps
// the cap derived from the decay probability.
func WithMaxSteps(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithObserver registers o for step notifications.
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// Simulation advances an N×N lattice of nuclei in fixed timesteps. Each
// still-undecayed nucleus decays during a step with probability
// p = 1 - exp(-λ·Δt), independently of every other nucleus.
type Simulation struct {
	decayConst float64
	timestep   float64
	p          float64

	lattice   *Lattice
	undecayed int
	initial   int
	threshold int
	steps     int

	seed      uint64
	seeded    bool
	rng       *rand.Rand
	workers   int
	maxSteps  int
	observers []Observer
}

// New builds a simulation with every nucleus undecayed and the clock at 0.
func New(decayConst float64, size int, timestep float64, opts ...Option) (*Simulation, error) {
	if err := validate(decayConst, size, timestep); err != nil {
		return nil, err
	}

	p := Probability(decayConst, timestep)
	if !(p > 0 && p < 1) {
		return nil, &ParameterError{Name: "decay_const*timestep", Value: decayConst * timestep, Rule: "decay probability must lie strictly between 0 and 1"}
	}

	s := &Simulation{
		decayConst: decayConst,
		timestep:   timestep,
		p:          p,
		lattice:    NewLattice(size),
		workers:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seeded {
		s.seed = rand.Uint64()
	}
	s.rng = rand.New(rand.NewPCG(s.seed, 0))

	s.initial = s.lattice.Len()
	s.undecayed = s.initial
	s.threshold = HalfThreshold(s.initial)
	if s.maxSteps == 0 {
		s.maxSteps = stepCap(p)
	}
	return s, nil
}

func validate(decayConst float64, size int, timestep float64) error {
	if math.IsNaN(decayConst) || math.IsInf(decayConst, 0) || decayConst <= 0 {
		return &ParameterError{Name: "decay_const", Value: decayConst, Rule: "must be a finite positive number"}
	}
	if size <= 0 {
		return &ParameterError{Name: "size", Value: float64(size), Rule: "must be a positive integer"}
	}
	if size > math.MaxInt32 || size*size/size != size {
		return &ParameterError{Name: "size", Value: float64(size), Rule: "lattice too large"}
	}
	if math.IsNaN(timestep) || math.IsInf(timestep, 0) || timestep <= 0 {
		return &ParameterError{Name: "timestep", Value: timestep, Rule: "must be a finite positive number"}
	}
	return nil
}

// Probability returns the per-step decay probability 1 - exp(-λ·Δt).
func Probability(decayConst, timestep float64) float64 {
	return -math.Expm1(-decayConst * timestep)
}

// ExpectedHalfTime returns the analytic half-life ln 2 / λ.
func ExpectedHalfTime(decayConst float64) float64 {
	return math.Ln2 / decayConst
}

// HalfThreshold returns the population at or below which the lattice counts
// as halved: ⌈population/2⌉. A single nucleus has to decay outright, so
// its threshold is 0.
func HalfThreshold(population int) int {
	if population <= 1 {
		return 0
	}
	return (population + 1) / 2
}

// stepCap bounds FindHalfTime at a hundred expected half-lives in steps.
// The chance of a live run exceeding it is below 2^-100.
func stepCap(p float64) int {
	expected := math.Ln2 / -math.Log1p(-p)
	limit := math.Ceil(100*expected) + 1000
	if limit >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(limit)
}

// Step advances the simulation by one timestep.
func (s *Simulation) Step() {
	if s.undecayed > 0 {
		n := s.lattice.Size()
		decayed := parallelRows(s.rng, n, s.workers, func(r *rand.Rand, start, end int) int {
			return s.decayRows(r, start, end)
		})
		for _, d := range decayed {
			s.undecayed -= d
		}
	}
	s.steps++

	t := s.Elapsed()
	for _, o := range s.observers {
		o.OnStep(s.steps, t, s.undecayed)
	}
}

// decayRows runs one Bernoulli trial per undecayed cell in rows [start, end)
// and returns how many decayed.
func (s *Simulation) decayRows(r *rand.Rand, start, end int) int {
	n := s.lattice.Size()
	cells := s.lattice.cells[start*n : end*n]
	count := 0
	for i, c := range cells {
		if c == Undecayed && r.Float64() < s.p {
			cells[i] = Decayed
			count++
		}
	}
	return count
}

// FindHalfTime steps until the undecayed population is at or below the
// threshold fixed at construction and returns the elapsed time. The
// simulation is left at the first step at or below the threshold.
func (s *Simulation) FindHalfTime(ctx context.Context) (float64, error) {
	for s.undecayed > s.threshold {
		select {
		case <-ctx.Done():
			return s.Elapsed(), ctx.Err()
		default:
		}

		if s.undecayed == 0 {
			return s.Elapsed(), s.stall("population exhausted")
		}
		if s.steps >= s.maxSteps {
			return s.Elapsed(), s.stall("step cap reached")
		}

		s.Step()
	}
	return s.Elapsed(), nil
}

func (s *Simulation) stall(reason string) error {
	return &StallError{
		Step:      s.steps,
		Time:      s.Elapsed(),
		Undecayed: s.undecayed,
		Threshold: s.threshold,
		Reason:    reason,
	}
}

// Undecayed returns the number of nuclei that have not decayed yet.
func (s *Simulation) Undecayed() int { return s.undecayed }

// Initial returns the population at construction, N².
func (s *Simulation) Initial() int { return s.initial }

// Threshold returns the half-population threshold.
func (s *Simulation) Threshold() int { return s.threshold }

// Steps returns the number of completed steps.
func (s *Simulation) Steps() int { return s.steps }

// Elapsed returns steps × timestep.
func (s *Simulation) Elapsed() float64 { return float64(s.steps) * s.timestep }

func (s *Simulation) DecayConst() float64  { return s.decayConst }
func (s *Simulation) Timestep() float64    { return s.timestep }
func (s *Simulation) Probability() float64 { return s.p }
func (s *Simulation) Size() int            { return s.lattice.Size() }
func (s *Simulation) Seed() uint64         { return s.seed }
func (s *Simulation) MaxSteps() int        { return s.maxSteps }

// Lattice returns a snapshot of the current lattice.
func (s *Simulation) Lattice() *Lattice { return s.lattice.Clone() }

// String renders the lattice, 1 for undecayed and 0 for decayed.
func (s *Simulation) String() string { return s.lattice.String() }
