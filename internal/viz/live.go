package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/decaysim/internal/decay"
)

const (
	// maxLatticeView is the largest lattice drawn cell by cell.
	maxLatticeView = 60
	sparkWidth     = 40
	maxStepsFrame  = 1024
)

type TickMsg time.Time

// Model steps a simulation on every tick and draws the lattice, the
// population history and the half-time once it has been crossed.
type Model struct {
	params        decay.Params
	seed          uint64
	unit          string
	sim           *decay.Simulation
	rec           *Recorder
	stepsPerFrame int
	running       bool
	halfTime      float64
	crossed       bool
	err           error
}

// NewModel builds the first simulation from params and seed.
func NewModel(params decay.Params, seed uint64, unit string) (Model, error) {
	m := Model{
		params:        params,
		seed:          seed,
		unit:          unit,
		stepsPerFrame: 1,
		running:       true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	rec := NewRecorder(m.params.Size * m.params.Size)
	sim, err := decay.New(m.params.DecayConst, m.params.Size, m.params.Timestep,
		decay.WithSeed(m.seed),
		decay.WithWorkers(m.params.Workers),
		decay.WithObserver(rec),
	)
	if err != nil {
		return err
	}
	m.sim = sim
	m.rec = rec
	m.crossed = false
	m.halfTime = 0
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.seed++
			m.err = m.reset()
			m.running = true
		case "t":
			NextTheme()
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerFrame steps, recording the first crossing of
// the half threshold, and pauses once every nucleus has decayed.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame && m.sim.Undecayed() > 0; i++ {
		m.sim.Step()
		if !m.crossed && m.sim.Undecayed() <= m.sim.Threshold() {
			m.crossed = true
			m.halfTime = m.sim.Elapsed()
		}
	}
	if m.sim.Undecayed() == 0 {
		m.running = false
	}
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).
		Render(fmt.Sprintf("decay  λ=%g  N=%d  Δt=%g", m.params.DecayConst, m.params.Size, m.params.Timestep))

	var grid string
	if m.sim.Size() <= maxLatticeView {
		grid = RenderLattice(m.sim.Lattice(), CurrentTheme)
	} else {
		grid = Subtle.Render(fmt.Sprintf("%d×%d lattice too large to draw", m.sim.Size(), m.sim.Size()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, Panel.Render(grid), Panel.Render(m.stats())),
		KeyHint.Render("space pause · r reset · t theme · +/- speed · q quit"),
	)
}

func (m Model) stats() string {
	var status string
	switch {
	case m.sim.Undecayed() == 0:
		status = StatusDone.Render("DONE")
	case m.running:
		status = StatusRunning.Render("RUNNING")
	default:
		status = StatusPaused.Render("PAUSED")
	}

	half := "-"
	if m.crossed {
		half = fmt.Sprintf("%.2f %s", m.halfTime, m.unit)
	}

	remaining := float64(m.sim.Undecayed()) / float64(m.sim.Initial())
	lines := []string{
		status,
		"",
		row("step", fmt.Sprintf("%d", m.sim.Steps())),
		row("time", fmt.Sprintf("%.2f %s", m.sim.Elapsed(), m.unit)),
		row("undecayed", fmt.Sprintf("%d / %d", m.sim.Undecayed(), m.sim.Initial())),
		row("threshold", fmt.Sprintf("%d", m.sim.Threshold())),
		row("p(step)", fmt.Sprintf("%.5f", m.sim.Probability())),
		row("half-time", half),
		row("ln2/λ", fmt.Sprintf("%.2f %s", decay.ExpectedHalfTime(m.params.DecayConst), m.unit)),
		row("speed", fmt.Sprintf("%d steps/frame", m.stepsPerFrame)),
		row("seed", fmt.Sprintf("%d", m.seed)),
		"",
		ProgressBar(remaining, sparkWidth),
		Sparkline(m.rec.Values(), sparkWidth),
	}
	return strings.Join(lines, "\n")
}

func row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}
