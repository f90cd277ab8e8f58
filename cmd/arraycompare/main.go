package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/arraycompare/internal/config"
	"github.com/torosent/arraycompare/internal/harness"
	"github.com/torosent/arraycompare/internal/metrics"
	"github.com/torosent/arraycompare/internal/output"
	"github.com/torosent/arraycompare/internal/runner"
	"github.com/torosent/arraycompare/internal/sample"
	"github.com/torosent/arraycompare/internal/tracing"
)

const (
	progressInterval = 200 * time.Millisecond
	shutdownTimeout  = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	loader.SetOutput(stdout)
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	set, err := loadSamples(cfg)
	if err != nil {
		return err
	}
	logger.Debug("samples ready", "count", set.Len(), "input", cfg.InputPath)

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	progress := &runner.Progress{}
	opts := runner.Options{
		Workers:   cfg.Workers,
		SpawnRate: cfg.SpawnRate,
		Unpinned:  !cfg.PinThreads,
		Progress:  progress,
	}

	obs := &cliObserver{out: stdout, format: format}
	if cfg.Progress {
		obs.progress = progress
		obs.progressOut = stderr
	}

	h := harness.New(harness.Options{
		Strategies: runner.Strategies(opts),
		Verify:     cfg.Verify,
		Logger:     logger,
		Tracer:     provider.Tracer(),
		Observer:   obs,
	})

	report, err := h.Run(ctx, set)
	obs.stopProgress()
	if err != nil {
		return err
	}

	if format == output.FormatText {
		output.PrintFooter(stdout, report)
	} else if err := output.Print(stdout, format, report); err != nil {
		return err
	}

	if cfg.HistoryFile != "" {
		if err := output.AppendHistory(cfg.HistoryFile, report); err != nil {
			return err
		}
		logger.Debug("history appended", "path", cfg.HistoryFile)
	}
	return nil
}

func loadSamples(cfg *config.Config) (sample.Set, error) {
	if cfg.InputPath == "" {
		return sample.Generate(cfg.Samples), nil
	}
	return sample.Load(cfg.InputPath, cfg.Samples)
}

// cliObserver streams each strategy block as soon as it finishes and drives
// the optional progress line.
type cliObserver struct {
	out         io.Writer
	format      output.Format
	progress    *runner.Progress
	progressOut io.Writer
	reporter    *output.ProgressReporter
}

func (o *cliObserver) StrategyStarted(strategy string, _ int) {
	if o.progress == nil {
		return
	}
	o.reporter = output.NewProgressReporter(o.progress, strategy, progressInterval, o.progressOut)
	o.reporter.Start()
}

func (o *cliObserver) StrategyFinished(stats metrics.Stats) {
	o.stopProgress()
	if o.format == output.FormatText {
		output.PrintStrategy(o.out, stats)
	}
}

func (o *cliObserver) stopProgress() {
	if o.reporter != nil {
		o.reporter.Stop()
		o.reporter = nil
	}
}
