package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/decaysim/internal/config"
	"github.com/san-kum/decaysim/internal/decay"
	"github.com/san-kum/decaysim/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCenter(t *testing.T) {
	if got := center("Basic report", 20, '-'); got != "----Basic report----" {
		t.Errorf("unexpected centered text %q", got)
	}
	if got := center("toolong", 3, '-'); got != "toolong" {
		t.Errorf("expected text unchanged, got %q", got)
	}
}

func TestFormatRounded(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{24.98, "24.98"},
		{24.9812, "24.98"},
		{0.005, "0.01"},
		{3.1, "3.1"},
	}
	for _, tt := range tests {
		if got := formatRounded(tt.in); got != tt.expected {
			t.Errorf("formatRounded(%v): expected %s, got %s", tt.in, tt.expected, got)
		}
	}
}

func TestRunInteractive(t *testing.T) {
	in := strings.NewReader("0.5\n4\n0.1\n")
	var out bytes.Buffer

	if err := runInteractive(context.Background(), in, &out, decay.WithSeed(1)); err != nil {
		t.Fatalf("interactive run failed: %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"Provide the decay constant [min^-1]: ",
		"----Basic report----",
		"Legend: 0 - decayed; 1 - undecayed",
		"The model started with 16 nuclei.",
		"The actual half-time is 24.98min.",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRunInteractiveRetries(t *testing.T) {
	in := strings.NewReader("abc\n0\n3\n0.1\n1\n3\n0.1\n")
	var out bytes.Buffer

	if err := runInteractive(context.Background(), in, &out, decay.WithSeed(2)); err != nil {
		t.Fatalf("interactive run failed: %v", err)
	}

	report := out.String()
	if !strings.Contains(report, "not a number") {
		t.Error("expected a re-prompt for malformed input")
	}
	if !strings.Contains(report, "try again") {
		t.Error("expected a re-prompt for an invalid parameter")
	}
	if !strings.Contains(report, "The model started with 9 nuclei.") {
		t.Error("expected the report for the valid parameters")
	}
}

func TestRunInteractiveEOF(t *testing.T) {
	var out bytes.Buffer
	if err := runInteractive(context.Background(), strings.NewReader("1.0\n"), &out); err == nil {
		t.Error("expected error on truncated input")
	}
}

func TestRunCommandSavesRun(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "curve.png")

	out, err := execute(t, "run", "--data", dir, "--decay-const", "1", "--size", "10",
		"--timestep", "0.05", "--seed", "7", "--plot", "--png", png, "--lattice")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "run id: ") {
		t.Fatalf("expected a run id in output:\n%s", out)
	}
	if _, err := os.Stat(png); err != nil {
		t.Errorf("expected chart file: %v", err)
	}

	runs, err := storage.New(dir).List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Seed != 7 || runs[0].Size != 10 {
		t.Errorf("unexpected metadata %+v", runs[0])
	}

	out, err = execute(t, "list", "--data", dir)
	if err != nil || !strings.Contains(out, runs[0].ID) {
		t.Errorf("list should show the run: %v\n%s", err, out)
	}

	out, err = execute(t, "show", runs[0].ID, "--data", dir)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if strings.Count(out, "\n") < 10 {
		t.Errorf("expected the lattice rows in show output:\n%s", out)
	}

	out, err = execute(t, "export-json", runs[0].ID, "--data", dir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var data storage.ExportData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(data.Lattice) != 10 {
		t.Errorf("expected 10 lattice rows, got %d", len(data.Lattice))
	}
}

func TestRunCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decay.yaml")
	cfg := config.DefaultConfig()
	cfg.Size = 6
	cfg.Timestep = 0.5
	cfg.Seed = 11
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "run", "--data", dir, "--config", path, "--size", "8")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "undecayed: 64 -> ") {
		t.Errorf("size flag should override the config file:\n%s", out)
	}

	runs, _ := storage.New(dir).List()
	if len(runs) != 1 || runs[0].Seed != 11 || runs[0].Timestep != 0.5 {
		t.Errorf("config values not applied: %+v", runs)
	}
}

func TestRunCommandInvalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "run", "--data", dir, "--decay-const", "0"); err == nil {
		t.Error("expected error for zero decay constant")
	}
	if _, err := execute(t, "run", "--data", dir, "--preset", "nonexistent"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestEnsembleCommand(t *testing.T) {
	out, err := execute(t, "ensemble", "--preset", "tiny", "--runs", "5", "--seed", "3", "--plot")
	if err != nil {
		t.Fatalf("ensemble failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "mean half-time") {
		t.Errorf("expected summary in output:\n%s", out)
	}
	if strings.Count(out, "\n") < 6 {
		t.Errorf("expected one line per run:\n%s", out)
	}
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets failed: %v", err)
	}
	for _, name := range config.ListPresets() {
		if !strings.Contains(out, name) {
			t.Errorf("expected preset %s in output", name)
		}
	}
}

func TestListEmpty(t *testing.T) {
	out, err := execute(t, "list", "--data", filepath.Join(t.TempDir(), "none"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "no runs found") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"bogus":   LogLevelWarn,
	}
	for in, expected := range tests {
		if got := parseLogLevel(in); got != expected {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", in, expected, got)
		}
	}

	var buf bytes.Buffer
	l := NewLogger("error", &buf)
	l.Infof("hidden")
	l.Errorf("shown %d", 1)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "[ERROR] shown 1") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestScenarioCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := "name: smoke\nsteps:\n  - size: 4\n    timestep: 1\n    seed: 3\n  - decay_const: 2\n    size: 3\n    timestep: 0.05\n    seed: 4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "scenario", path)
	if err != nil {
		t.Fatalf("scenario failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "scenario: smoke") || !strings.Contains(out, "STEP") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSweepCommand(t *testing.T) {
	out, err := execute(t, "sweep", "--decay-const", "1", "--size", "6", "--seed", "2",
		"--runs", "2", "--param", "timestep", "--min", "0.02", "--max", "0.2", "--steps", "3", "--plot")
	if err != nil {
		t.Fatalf("sweep failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "TIMESTEP") || !strings.Contains(out, "mean half-time vs timestep") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestShowWritesSVG(t *testing.T) {
	dir := t.TempDir()
	if out, err := execute(t, "run", "--data", dir, "--size", "5", "--timestep", "1", "--seed", "9"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	runs, _ := storage.New(dir).List()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	svg := filepath.Join(dir, "lattice.svg")
	if out, err := execute(t, "show", runs[0].ID, "--data", dir, "--svg", svg); err != nil {
		t.Fatalf("show failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(svg)
	if err != nil {
		t.Fatalf("expected svg file: %v", err)
	}
	if !strings.HasSuffix(string(data), "</svg>") {
		t.Error("incomplete svg")
	}
}
