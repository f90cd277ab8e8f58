package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/torosent/arraycompare/internal/metrics"
)

// Format selects how the final report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use text, json or yaml", s)
	}
}

// PrintStrategy outputs the human-readable block for one strategy run.
func PrintStrategy(w io.Writer, stats metrics.Stats) {
	fmt.Fprintf(w, "\n--- array_compare (%s) ---\n", stats.Strategy)
	fmt.Fprintf(w, "Calculations:      %d\n", stats.Calculations)
	fmt.Fprintf(w, "Elapsed (ns):      %d\n", stats.DurationNs)
	fmt.Fprintf(w, "Elapsed (s):       %.9f\n", stats.DurationSeconds)
}

// PrintReport outputs every strategy block followed by a short footer.
func PrintReport(w io.Writer, report metrics.Report) {
	for _, s := range report.Strategies {
		PrintStrategy(w, s)
	}
	PrintFooter(w, report)
}

// PrintFooter outputs the run identity and verification outcome.
func PrintFooter(w io.Writer, report metrics.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run:               %s\n", report.RunID)
	fmt.Fprintf(w, "Pool workers:      %d\n", report.Workers)
	if report.Verified {
		fmt.Fprintln(w, "Results:           verified (all strategies agree)")
	} else {
		fmt.Fprintln(w, "Results:           not verified")
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report metrics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, report metrics.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// Print renders report in the given format. Text output includes every
// strategy block, so callers that already streamed blocks should use
// PrintFooter instead.
func Print(w io.Writer, format Format, report metrics.Report) error {
	switch format {
	case FormatJSON:
		return PrintJSONReport(w, report)
	case FormatYAML:
		return PrintYAMLReport(w, report)
	default:
		PrintReport(w, report)
		return nil
	}
}
