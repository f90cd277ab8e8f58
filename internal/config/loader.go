package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files, environment and
// command-line arguments.
type Loader struct {
	lookupEnv func(string) (string, bool)
	out       io.Writer
}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// ErrInvalidSampleCount is returned when the sample count is not a
// non-negative integer.
var ErrInvalidSampleCount = errors.New("invalid sample count")

// envPrefix namespaces environment overrides, e.g. ARRAYCOMPARE_WORKERS.
const envPrefix = "ARRAYCOMPARE"

// envKeys lists the settings that may be supplied through the environment.
var envKeys = []string{
	"samples",
	"input",
	"workers",
	"spawn_rate",
	"pin_threads",
	"verify",
	"progress",
	"format",
	"history",
	"log_level",
	"tracing.endpoint",
	"tracing.protocol",
	"tracing.insecure",
	"tracing.service_name",
	"tracing.sample_rate",
}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// SetOutput sets where help text is written. The default is os.Stdout.
func (l *Loader) SetOutput(w io.Writer) {
	l.out = w
}

// Load parses command-line arguments, the environment and an optional
// configuration file to produce a Config. Precedence, lowest first:
// defaults, config file, environment, flags, positional sample count.
func (l *Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand(l.out)
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	positional := flagSet.Args()
	if err := cmd.Args(cmd, positional); err != nil {
		return nil, err
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	if err := l.bindEnv(cfgViper); err != nil {
		return nil, err
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Samples:    DefaultSamples,
		PinThreads: true,
		Verify:     true,
		Format:     "text",
		LogLevel:   "info",
		ConfigFile: configPath,
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if len(positional) == 1 {
		n, err := ParseSampleCount(positional[0])
		if err != nil {
			return nil, err
		}
		cfg.Samples = n
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.InputPath = strings.TrimSpace(cfg.InputPath)

	return cfg, nil
}

// ParseSampleCount parses the positional sample count argument.
func ParseSampleCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w %q: must be a non-negative integer", ErrInvalidSampleCount, s)
	}
	return n, nil
}

// asSampleCount applies the positional argument's rules to a sample count
// read from a config file or the environment.
func asSampleCount(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case string:
		return ParseSampleCount(v)
	case float32:
		return asSampleCount(float64(v))
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return 0, fmt.Errorf("%w %v: must be a non-negative integer", ErrInvalidSampleCount, v)
		}
		return int(v), nil
	}
	n, err := asInt(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w %v: must be a non-negative integer", ErrInvalidSampleCount, raw)
	}
	return n, nil
}

func (l *Loader) bindEnv(v *viper.Viper) error {
	for _, key := range envKeys {
		name := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if l.lookupEnv != nil {
			if val, ok := l.lookupEnv(name); ok {
				v.Set(key, val)
			}
			continue
		}
		if err := v.BindEnv(key, name); err != nil {
			return err
		}
	}
	return nil
}

// applyConfigSettings applies settings from a config file or the
// environment to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "samples"); ok {
		val, err := asSampleCount(raw)
		if err != nil {
			return fmt.Errorf("samples: %w", err)
		}
		cfg.Samples = val
	}

	if raw, ok := lookupSetting(settings, "input", "input_path", "input-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		cfg.InputPath = val
	}

	if raw, ok := lookupSetting(settings, "workers"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("workers: %w", err)
		}
		cfg.Workers = val
	}

	if raw, ok := lookupSetting(settings, "spawnrate", "spawn_rate", "spawn-rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("spawnRate: %w", err)
		}
		cfg.SpawnRate = val
	}

	if raw, ok := lookupSetting(settings, "pinthreads", "pin_threads", "pin-threads"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("pinThreads: %w", err)
		}
		cfg.PinThreads = val
	}

	if raw, ok := lookupSetting(settings, "verify"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		cfg.Verify = val
	}

	if raw, ok := lookupSetting(settings, "progress"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		cfg.Progress = val
	}

	if raw, ok := lookupSetting(settings, "format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		if val != "" {
			cfg.Format = val
		}
	}

	if raw, ok := lookupSetting(settings, "history", "history_file", "history-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		cfg.HistoryFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		if val != "" {
			cfg.LogLevel = val
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func applyTracingSettings(t *TracingConfig, raw interface{}) error {
	settings, err := toStringKeyMap(raw)
	if err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		if val != "" {
			t.Protocol = val
		}
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		t.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("serviceName: %w", err)
		}
		t.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sampleRate: %w", err)
		}
		t.SampleRate = val
	}
	return nil
}
