package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// PassStats summarizes one watch-mode evaluation pass.
type PassStats struct {
	Pass      int64
	Collected int
	Checks    int
	Passed    int
	Failed    int
	Errored   int
	Duration  time.Duration
}

// RecordEvaluationPass records one pass as a span plus the global metric
// instruments. Callers must have run InitOTEL first.
func RecordEvaluationPass(ctx context.Context, stats PassStats) {
	ctx, span := Tracer.Start(ctx, "valvo.pass",
		trace.WithAttributes(
			attribute.Int64("pass.number", stats.Pass),
			attribute.Int("resources.collected", stats.Collected),
			attribute.Int("checks.total", stats.Checks),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	attrs := metric.WithAttributes(attribute.Int64("pass", stats.Pass))

	ResourcesCollected.Record(ctx, int64(stats.Collected), attrs)
	ChecksEvaluated.Add(ctx, int64(stats.Checks), attrs)
	ResourcesEvaluated.Add(ctx, int64(stats.Passed+stats.Failed+stats.Errored), attrs)
	CheckFailures.Add(ctx, int64(stats.Failed), attrs)
	EvaluationErrors.Add(ctx, int64(stats.Errored), attrs)
	EvaluationDuration.Record(ctx, stats.Duration.Seconds(), attrs)

	span.SetAttributes(
		attribute.Int("verdicts.passed", stats.Passed),
		attribute.Int("verdicts.failed", stats.Failed),
		attribute.Int("verdicts.errored", stats.Errored),
		attribute.Float64("duration.seconds", stats.Duration.Seconds()),
	)

	if stats.Errored > 0 {
		span.SetStatus(codes.Error, "pass completed with evaluation errors")
		return
	}
	span.SetStatus(codes.Ok, "pass completed")
}
