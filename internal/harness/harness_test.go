package harness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/torosent/arraycompare/internal/harness"
	"github.com/torosent/arraycompare/internal/metrics"
	"github.com/torosent/arraycompare/internal/runner"
	"github.com/torosent/arraycompare/internal/sample"
)

type fakeStrategy struct {
	name       string
	deviations []float64
	duration   time.Duration
	err        error
	calls      int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Run(context.Context, sample.Set) (runner.Result, error) {
	f.calls++
	if f.err != nil {
		return runner.Result{}, f.err
	}
	return runner.Result{Strategy: f.name, Deviations: f.deviations, Duration: f.duration}, nil
}

type recordingObserver struct {
	events []string
	stats  []metrics.Stats
}

func (r *recordingObserver) StrategyStarted(name string, total int) {
	r.events = append(r.events, "start "+name)
}

func (r *recordingObserver) StrategyFinished(s metrics.Stats) {
	r.events = append(r.events, "finish "+s.Strategy)
	r.stats = append(r.stats, s)
}

func TestRunWorkedExample(t *testing.T) {
	obs := &recordingObserver{}
	h := harness.New(harness.Options{
		Strategies: runner.Strategies(runner.Options{Workers: 2}),
		Verify:     true,
		Observer:   obs,
	})

	report, err := h.Run(context.Background(), sample.New([]float64{1.0, 5.0, 2.0}))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Samples)
	assert.Equal(t, 2, report.Workers)
	assert.True(t, report.Verified)
	assert.False(t, report.GeneratedAt.IsZero())
	require.Len(t, report.Strategies, 3)
	for i, name := range []string{runner.NameSequential, runner.NameThreadPerItem, runner.NamePooled} {
		assert.Equal(t, name, report.Strategies[i].Strategy)
		assert.Equal(t, 3, report.Strategies[i].Calculations)
		assert.GreaterOrEqual(t, report.Strategies[i].DurationNs, int64(0))
	}

	assert.Equal(t, []string{
		"start sequential", "finish sequential",
		"start thread-per-item", "finish thread-per-item",
		"start pooled", "finish pooled",
	}, obs.events)
	assert.Equal(t, report.Strategies, obs.stats)
}

func TestRunRandomSamplesAgree(t *testing.T) {
	h := harness.New(harness.Options{
		Strategies: runner.Strategies(runner.Options{Workers: 4, Unpinned: true}),
		Verify:     true,
	})
	report, err := h.Run(context.Background(), sample.Generate(200))
	require.NoError(t, err)
	assert.True(t, report.Verified)
	for _, s := range report.Strategies {
		assert.Equal(t, 200, s.Calculations)
	}
}

func TestRunEmptySet(t *testing.T) {
	h := harness.New(harness.Options{Verify: true})
	report, err := h.Run(context.Background(), sample.Set{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Samples)
	require.Len(t, report.Strategies, 3)
	for _, s := range report.Strategies {
		assert.Zero(t, s.Calculations)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	first := &fakeStrategy{name: "first", deviations: []float64{1}}
	failing := &fakeStrategy{name: "failing", err: boom}
	never := &fakeStrategy{name: "never", deviations: []float64{1}}
	obs := &recordingObserver{}

	h := harness.New(harness.Options{
		Strategies: []runner.Strategy{first, failing, never},
		Observer:   obs,
	})
	_, err := h.Run(context.Background(), sample.New([]float64{1}))

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, 0, never.calls)
	assert.Equal(t, []string{"start first", "finish first", "start failing"}, obs.events)
}

func TestRunPropagatesUnitError(t *testing.T) {
	strategies := runner.Strategies(runner.Options{
		Workers: 2,
		Metric:  func(float64, []float64) float64 { panic("bad metric") },
	})
	_, err := harness.New(harness.Options{Strategies: strategies}).Run(context.Background(), sample.New([]float64{1, 2}))

	var unitErr *runner.UnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, runner.NameSequential, unitErr.Strategy)
}

func TestRunVerificationMismatch(t *testing.T) {
	strategies := []runner.Strategy{
		&fakeStrategy{name: "reference", deviations: []float64{4, 3, 3}},
		&fakeStrategy{name: "reordered", deviations: []float64{3, 4, 3}},
		&fakeStrategy{name: "wrong", deviations: []float64{4, 3, 2}},
	}

	_, err := harness.New(harness.Options{Strategies: strategies, Verify: true}).
		Run(context.Background(), sample.New([]float64{1, 5, 2}))

	var mismatch *harness.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "wrong", mismatch.Strategy)
	assert.Equal(t, "reference", mismatch.Reference)
}

func TestRunSkipsVerificationWhenDisabled(t *testing.T) {
	strategies := []runner.Strategy{
		&fakeStrategy{name: "a", deviations: []float64{1}},
		&fakeStrategy{name: "b", deviations: []float64{2}},
	}

	report, err := harness.New(harness.Options{Strategies: strategies}).
		Run(context.Background(), sample.New([]float64{1}))
	require.NoError(t, err)
	assert.False(t, report.Verified)
}

func TestRunRecordsIntoCollector(t *testing.T) {
	collector := metrics.NewCollector()
	strategies := []runner.Strategy{
		&fakeStrategy{name: "a", deviations: []float64{0, 0}, duration: 3 * time.Millisecond},
	}

	_, err := harness.New(harness.Options{Strategies: strategies, Collector: collector}).
		Run(context.Background(), sample.New([]float64{1, 1}))
	require.NoError(t, err)

	got, ok := collector.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 2, got.Calculations)
	assert.Equal(t, int64(3*time.Millisecond), got.DurationNs)
}

func TestRunSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	boom := errors.New("boom")
	strategies := []runner.Strategy{
		&fakeStrategy{name: "ok", deviations: []float64{0}},
		&fakeStrategy{name: "bad", err: boom},
	}
	_, err := harness.New(harness.Options{Strategies: strategies, Tracer: tp.Tracer("test")}).
		Run(context.Background(), sample.New([]float64{1}))
	require.ErrorIs(t, err, boom)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "strategy ok", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, "strategy bad", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "arraycompare run", spans[2].Name)
	assert.Equal(t, codes.Error, spans[2].Status.Code)
	assert.Equal(t, spans[2].SpanContext.SpanID(), spans[0].Parent.SpanID())
}
