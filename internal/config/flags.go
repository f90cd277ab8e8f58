package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured. Help
// text goes to out, or to os.Stdout when out is nil.
func newFlagCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "arraycompare [samples]",
		Short:         "Benchmark sequential, thread-per-item and pooled max-deviation runs",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	if out == nil {
		out = os.Stdout
	}
	cmd.SetOut(out)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Input flags
	flags.StringP("input", "i", "", "Load samples from a file (one number per line, or a JSON array)")

	// Strategy flags
	flags.IntP("workers", "w", 0, "Pooled strategy worker count (0 means GOMAXPROCS)")
	flags.Int("spawn-rate", 0, "Thread-per-item units started per second (0 means unlimited)")
	flags.Bool("pin-threads", true, "Pin every thread-per-item unit to its own OS thread")
	flags.Bool("verify", true, "Check that every strategy produced the same deviations")

	// Output flags
	flags.StringP("format", "o", "text", "Report format: text, json or yaml")
	flags.Bool("progress", false, "Show live progress on stderr while a strategy runs")
	flags.String("history", "", "Append a JSON line per run to this file")
	flags.String("log-level", "info", "Diagnostic log level on stderr (debug, info, warn, error)")
	flags.String("config", "", "Path to configuration file (JSON, YAML or TOML)")

	// Tracing flags
	flags.String("otel-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("otel-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("otel-insecure", false, "Disable TLS for the OTLP exporter")
	flags.String("otel-service-name", "", "Service name reported on spans")
	flags.Float64("otel-sample-rate", 1.0, "Fraction of runs to trace (0.0-1.0)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file and environment.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("input") {
		val, err := fs.GetString("input")
		if err != nil {
			return err
		}
		cfg.InputPath = strings.TrimSpace(val)
	}
	if fs.Changed("workers") {
		val, err := fs.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = val
	}
	if fs.Changed("spawn-rate") {
		val, err := fs.GetInt("spawn-rate")
		if err != nil {
			return err
		}
		cfg.SpawnRate = val
	}
	if fs.Changed("pin-threads") {
		val, err := fs.GetBool("pin-threads")
		if err != nil {
			return err
		}
		cfg.PinThreads = val
	}
	if fs.Changed("verify") {
		val, err := fs.GetBool("verify")
		if err != nil {
			return err
		}
		cfg.Verify = val
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = val
	}
	if fs.Changed("progress") {
		val, err := fs.GetBool("progress")
		if err != nil {
			return err
		}
		cfg.Progress = val
	}
	if fs.Changed("history") {
		val, err := fs.GetString("history")
		if err != nil {
			return err
		}
		cfg.HistoryFile = strings.TrimSpace(val)
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = val
	}
	return applyTracingFlagOverrides(&cfg.Tracing, fs)
}

func applyTracingFlagOverrides(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("otel-endpoint") {
		val, err := fs.GetString("otel-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otel-protocol") {
		val, err := fs.GetString("otel-protocol")
		if err != nil {
			return err
		}
		t.Protocol = val
	}
	if fs.Changed("otel-insecure") {
		val, err := fs.GetBool("otel-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("otel-service-name") {
		val, err := fs.GetString("otel-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = val
	}
	if fs.Changed("otel-sample-rate") {
		val, err := fs.GetFloat64("otel-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	return nil
}
