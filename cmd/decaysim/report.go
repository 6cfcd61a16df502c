package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/decaysim/internal/config"
	"github.com/san-kum/decaysim/internal/decay"
)

const reportWidth = 20

// prompter reads one value per line, asking again on malformed input.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) float(prompt string) (float64, error) {
	for {
		text, err := p.line(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "not a number: %q\n", text)
	}
}

func (p *prompter) int(prompt string) (int, error) {
	for {
		text, err := p.line(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "not an integer: %q\n", text)
	}
}

// runInteractive asks for the three simulation parameters, runs to the
// half-time and prints the basic report.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer, opts ...decay.Option) error {
	p := newPrompter(in, out)

	var sim *decay.Simulation
	for sim == nil {
		decayConst, err := p.float("Provide the decay constant [min^-1]: ")
		if err != nil {
			return err
		}
		n, err := p.int("Provide the size of the NxN array: ")
		if err != nil {
			return err
		}
		timestep, err := p.float("Provide the timestep of the decay [min]: ")
		if err != nil {
			return err
		}

		sim, err = decay.New(decayConst, n, timestep, opts...)
		if errors.Is(err, decay.ErrInvalidParameter) {
			fmt.Fprintf(out, "%v, try again\n", err)
			continue
		}
		if err != nil {
			return err
		}
	}

	initial := sim.Undecayed()
	logger.Debugf("interactive run λ=%g N=%d Δt=%g seed=%d", sim.DecayConst(), sim.Size(), sim.Timestep(), sim.Seed())

	halfTime, err := sim.FindHalfTime(ctx)
	if err != nil {
		return fmt.Errorf("find half time: %w", err)
	}

	return writeBasicReport(out, sim, initial, halfTime)
}

func writeBasicReport(w io.Writer, sim *decay.Simulation, initial int, halfTime float64) error {
	rule := strings.Repeat("-", reportWidth)
	_, err := fmt.Fprintf(w, `%s
%s
%s
The visualization of the nucleide after the decay:
Legend: 0 - decayed; 1 - undecayed
%s
The model started with %d nuclei. After the decay %d of them remained.
The simulation found that the half-time of this nucleide is approximately %smin.
The actual half-time is %smin.
`,
		rule, center("Basic report", reportWidth, '-'), rule,
		sim.String(),
		initial, sim.Undecayed(),
		formatRounded(halfTime), formatRounded(config.ReferenceHalfTime),
	)
	return err
}

// center pads s on both sides with fill, putting any odd column on the right.
func center(s string, width int, fill rune) string {
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), pad-left)
}

// formatRounded rounds to two decimals and drops trailing zeros.
func formatRounded(v float64) string {
	r := math.Round(v*100) / 100
	return strconv.FormatFloat(r, 'f', -1, 64)
}
