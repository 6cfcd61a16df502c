package viz

// Recorder keeps the population after every step for plotting.
type Recorder struct {
	Times  []float64
	Counts []int
}

// NewRecorder starts the history at t=0 with the initial population.
func NewRecorder(initial int) *Recorder {
	return &Recorder{
		Times:  []float64{0},
		Counts: []int{initial},
	}
}

func (r *Recorder) OnStep(step int, t float64, undecayed int) {
	r.Times = append(r.Times, t)
	r.Counts = append(r.Counts, undecayed)
}

// Values returns the counts as float64 for the plotting libraries.
func (r *Recorder) Values() []float64 {
	v := make([]float64, len(r.Counts))
	for i, c := range r.Counts {
		v[i] = float64(c)
	}
	return v
}

func (r *Recorder) Len() int { return len(r.Counts) }

// Reset clears the history back to a single initial sample.
func (r *Recorder) Reset(initial int) {
	r.Times = append(r.Times[:0], 0)
	r.Counts = append(r.Counts[:0], initial)
}
