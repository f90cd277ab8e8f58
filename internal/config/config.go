package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// DefaultSamples is used when no sample count is given.
const DefaultSamples = 1000

type Config struct {
	Samples     int           `mapstructure:"samples"`
	InputPath   string        `mapstructure:"input"`
	Workers     int           `mapstructure:"workers"`
	SpawnRate   int           `mapstructure:"spawn_rate"`
	PinThreads  bool          `mapstructure:"pin_threads"`
	Verify      bool          `mapstructure:"verify"`
	Progress    bool          `mapstructure:"progress"`
	Format      string        `mapstructure:"format"` // "text", "json" or "yaml"
	HistoryFile string        `mapstructure:"history"`
	LogLevel    string        `mapstructure:"log_level"`
	ConfigFile  string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// TracingConfig configures OTLP span export. Tracing is off unless an
// endpoint is set here or through OTEL_EXPORTER_OTLP_ENDPOINT.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Samples < 0 {
		issues = append(issues, "samples must be non-negative")
	}
	if c.Workers < 0 {
		issues = append(issues, "workers must be non-negative")
	}
	if c.SpawnRate < 0 {
		issues = append(issues, "spawn rate must be non-negative")
	}

	switch c.Format {
	case "text", "json", "yaml":
	default:
		issues = append(issues, fmt.Sprintf("format must be text, json or yaml (got %q)", c.Format))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		issues = append(issues, err.Error())
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample rate must be between 0 and 1 (got %g)", c.Tracing.SampleRate))
	}
	switch strings.ToLower(c.Tracing.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol must be grpc or http (got %q)", c.Tracing.Protocol))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// ParseLogLevel maps a level name such as "debug" or "warn" to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
