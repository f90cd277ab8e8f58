package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/arraycompare/internal/config"
	"github.com/torosent/arraycompare/internal/metrics"
	"github.com/torosent/arraycompare/internal/output"
)

func TestExecuteTextReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := execute(context.Background(), []string{"25", "--workers", "2"}, &stdout, &stderr); err != nil {
		t.Fatalf("execute() error = %v (stderr: %s)", err, stderr.String())
	}

	got := stdout.String()
	for _, name := range []string{"sequential", "thread-per-item", "pooled"} {
		header := "--- array_compare (" + name + ") ---"
		if !strings.Contains(got, header) {
			t.Errorf("output missing %q:\n%s", header, got)
		}
	}
	if strings.Count(got, "Calculations:      25\n") != 3 {
		t.Errorf("want three blocks with 25 calculations:\n%s", got)
	}
	if !strings.Contains(got, "verified (all strategies agree)") {
		t.Errorf("output missing verification footer:\n%s", got)
	}

	seq := strings.Index(got, "(sequential)")
	thr := strings.Index(got, "(thread-per-item)")
	pool := strings.Index(got, "(pooled)")
	if !(seq < thr && thr < pool) {
		t.Errorf("strategy blocks out of order:\n%s", got)
	}
}

func TestExecuteZeroSamples(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := execute(context.Background(), []string{"0"}, &stdout, &stderr); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if strings.Count(stdout.String(), "Calculations:      0\n") != 3 {
		t.Errorf("want three blocks with 0 calculations:\n%s", stdout.String())
	}
}

func TestExecuteInvalidSampleCount(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), []string{"lots"}, &stdout, &stderr)
	if !errors.Is(err, config.ErrInvalidSampleCount) {
		t.Fatalf("execute() error = %v, want ErrInvalidSampleCount", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("no strategy should run on a bad sample count, got:\n%s", stdout.String())
	}
}

func TestExecuteHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := execute(context.Background(), []string{"--help"}, &stdout, &stderr); err != nil {
		t.Fatalf("execute(--help) error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Usage: arraycompare [samples]") {
		t.Errorf("help not written to stdout writer:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "--- array_compare") {
		t.Error("no strategy should run when help is requested")
	}
}

func TestExecuteJSONWithInputAndHistory(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "samples.json")
	if err := os.WriteFile(input, []byte(`[1.0, 5.0, 2.0, 9.0]`), 0o600); err != nil {
		t.Fatal(err)
	}
	history := filepath.Join(dir, "history.jsonl")

	var stdout, stderr bytes.Buffer
	args := []string{"3", "--input", input, "--format", "json", "--history", history, "--pin-threads=false"}
	if err := execute(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("execute() error = %v (stderr: %s)", err, stderr.String())
	}

	var report metrics.Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, stdout.String())
	}
	if report.Samples != 3 {
		t.Errorf("Samples = %d, want 3 (input truncated to the sample count)", report.Samples)
	}
	if len(report.Strategies) != 3 {
		t.Fatalf("Strategies len = %d, want 3", len(report.Strategies))
	}
	if !report.Verified {
		t.Error("Verified = false, want true")
	}

	data, err := os.ReadFile(history)
	if err != nil {
		t.Fatalf("history file: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 1 {
		t.Errorf("history has %d lines, want 1", lines)
	}
	if !strings.Contains(string(data), report.RunID) {
		t.Error("history line does not carry the run ID")
	}
}

func TestExecuteMissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), []string{"--input", filepath.Join(t.TempDir(), "missing.txt")}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestExecuteRejectsInvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), []string{"--format", "xml"}, &stdout, &stderr)
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("execute() error = %v, want ValidationError", err)
	}
}

func TestCLIObserverSkipsBlocksForStructuredFormats(t *testing.T) {
	var out bytes.Buffer
	obs := &cliObserver{out: &out, format: output.FormatYAML}
	obs.StrategyStarted("sequential", 3)
	obs.StrategyFinished(metrics.NewStats("sequential", 3, 0))
	if out.Len() != 0 {
		t.Errorf("structured format should not stream blocks, got %q", out.String())
	}

	obs.format = output.FormatText
	obs.StrategyFinished(metrics.NewStats("sequential", 3, 0))
	if !strings.Contains(out.String(), "--- array_compare (sequential) ---") {
		t.Errorf("text format should stream blocks, got %q", out.String())
	}
}
