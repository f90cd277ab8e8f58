// Package harness runs every strategy over one shared sample set, records
// their timings and checks that they agree on the result.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gonum.org/v1/gonum/floats"

	"github.com/torosent/arraycompare/internal/metrics"
	"github.com/torosent/arraycompare/internal/runner"
	"github.com/torosent/arraycompare/internal/sample"
	"github.com/torosent/arraycompare/internal/tracing"
)

// Tolerance bounds the per-element difference accepted when comparing the
// deviations of two strategies.
const Tolerance = 1e-12

// Observer is notified around every strategy run. Calls happen on the
// goroutine that called Run, in strategy order.
type Observer interface {
	StrategyStarted(strategy string, total int)
	StrategyFinished(stats metrics.Stats)
}

// MismatchError reports a strategy whose deviations differ from the
// reference strategy's.
type MismatchError struct {
	Strategy  string
	Reference string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: deviations do not match %s", e.Strategy, e.Reference)
}

// Options configure a Harness.
type Options struct {
	Strategies []runner.Strategy  // run in order; the first is the verification reference
	Verify     bool               // compare every strategy's deviations against the first
	Logger     *slog.Logger       // nil discards logs
	Tracer     trace.Tracer       // nil disables spans
	Collector  *metrics.Collector // nil creates one per Run
	Observer   Observer           // optional
}

// Harness sequences strategy runs.
type Harness struct {
	opt Options
}

// New returns a Harness. Without explicit strategies it runs
// runner.Strategies with default options.
func New(opt Options) *Harness {
	if len(opt.Strategies) == 0 {
		opt.Strategies = runner.Strategies(runner.Options{})
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	if opt.Tracer == nil {
		opt.Tracer = noop.NewTracerProvider().Tracer(tracing.InstrumentationName)
	}
	return &Harness{opt: opt}
}

// Run executes every strategy over set and returns the combined report.
// The first strategy error aborts the run; no partial report is returned.
func (h *Harness) Run(ctx context.Context, set sample.Set) (metrics.Report, error) {
	collector := h.opt.Collector
	if collector == nil {
		collector = metrics.NewCollector()
	}
	workers := h.workers()
	runID := ulid.Make().String()
	log := h.opt.Logger.With("run_id", runID)

	ctx, span := tracing.StartRunSpan(ctx, h.opt.Tracer, set.Len(), workers)
	span.SetAttributes(tracing.AttrRunID.String(runID))

	log.Debug("run started", "samples", set.Len(), "strategies", len(h.opt.Strategies), "workers", workers)

	results := make([]runner.Result, 0, len(h.opt.Strategies))
	for _, s := range h.opt.Strategies {
		res, err := h.runOne(ctx, log, collector, s, set)
		if err != nil {
			tracing.EndSpan(span, err)
			return metrics.Report{}, err
		}
		results = append(results, res)
	}

	verified := false
	if h.opt.Verify {
		if err := verify(results); err != nil {
			log.Error("verification failed", "error", err)
			tracing.EndSpan(span, err)
			return metrics.Report{}, err
		}
		verified = true
		log.Debug("strategies agree", "strategies", len(results))
	}

	report := metrics.Report{
		RunID:       runID,
		Samples:     set.Len(),
		Workers:     workers,
		GeneratedAt: time.Now().UTC(),
		Verified:    verified,
		Strategies:  collector.Stats(),
	}
	tracing.EndSpan(span, nil)
	return report, nil
}

func (h *Harness) runOne(ctx context.Context, log *slog.Logger, collector *metrics.Collector, s runner.Strategy, set sample.Set) (runner.Result, error) {
	name := s.Name()
	if h.opt.Observer != nil {
		h.opt.Observer.StrategyStarted(name, set.Len())
	}
	log.Debug("strategy started", "strategy", name)

	ctx, span := tracing.StartStrategySpan(ctx, h.opt.Tracer, name, set.Len())
	res, err := s.Run(ctx, set)
	if err != nil {
		log.Error("strategy failed", "strategy", name, "error", err)
		tracing.EndSpan(span, err)
		return runner.Result{}, fmt.Errorf("run %s: %w", name, err)
	}

	stats := collector.Record(name, res.Calculations(), res.Duration)
	tracing.EndSpan(span, nil,
		tracing.AttrCalculations.Int(stats.Calculations),
		tracing.AttrElapsedNs.Int64(stats.DurationNs),
	)
	log.Info("strategy finished", "strategy", name, "calculations", stats.Calculations, "elapsed", stats.Duration)

	if h.opt.Observer != nil {
		h.opt.Observer.StrategyFinished(stats)
	}
	return res, nil
}

// workers reports the bound of the first strategy that has one.
func (h *Harness) workers() int {
	for _, s := range h.opt.Strategies {
		if b, ok := s.(interface{ Workers() int }); ok {
			return b.Workers()
		}
	}
	return 0
}

// verify compares every result against the first one as multisets, since
// the pooled strategy returns deviations in completion order.
func verify(results []runner.Result) error {
	if len(results) < 2 {
		return nil
	}
	ref := results[0]
	want := slices.Clone(ref.Deviations)
	slices.Sort(want)
	for _, res := range results[1:] {
		got := slices.Clone(res.Deviations)
		slices.Sort(got)
		if len(got) != len(want) || !floats.EqualApprox(got, want, Tolerance) {
			return &MismatchError{Strategy: res.Strategy, Reference: ref.Strategy}
		}
	}
	return nil
}
