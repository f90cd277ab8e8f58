package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys attached to benchmark spans.
const (
	AttrStrategy     = attribute.Key("arraycompare.strategy")
	AttrSamples      = attribute.Key("arraycompare.samples")
	AttrWorkers      = attribute.Key("arraycompare.workers")
	AttrCalculations = attribute.Key("arraycompare.calculations")
	AttrElapsedNs    = attribute.Key("arraycompare.elapsed_ns")
	AttrRunID        = attribute.Key("arraycompare.run_id")
)

// StartRunSpan starts the root span covering one benchmark invocation.
func StartRunSpan(ctx context.Context, tracer trace.Tracer, samples, workers int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "arraycompare run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrSamples.Int(samples),
			AttrWorkers.Int(workers),
		),
	)
}

// StartStrategySpan starts a child span for a single strategy execution.
func StartStrategySpan(ctx context.Context, tracer trace.Tracer, strategy string, samples int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "strategy "+strategy,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrStrategy.String(strategy),
			AttrSamples.Int(samples),
		),
	)
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
