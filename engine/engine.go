// Package engine evaluates checks against resource collections, one verdict
// per resource. Evaluation is sequential and deterministic; a failure on one
// resource never aborts the rest of the collection.
package engine

import (
	"context"
	"time"

	"github.com/yairfalse/valvo/logic"
	"github.com/yairfalse/valvo/ops"
	"github.com/yairfalse/valvo/resolver"
	"github.com/yairfalse/valvo/telemetry"
	"github.com/yairfalse/valvo/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Engine runs checks over resource collections. It holds no mutable state
// between invocations; checks and resources are read-only inputs.
type Engine struct {
	registry *ops.Registry
	executor *logic.Executor
	logger   *telemetry.Logger
	tracer   trace.Tracer

	checksEvaluated    metric.Int64Counter
	resourcesEvaluated metric.Int64Counter
	checkFailures      metric.Int64Counter
	evaluationErrors   metric.Int64Counter
	evaluationDuration metric.Float64Histogram
}

// New creates an engine over the given operation registry and logic executor.
func New(registry *ops.Registry, executor *logic.Executor) *Engine {
	e := &Engine{
		registry: registry,
		executor: executor,
		logger:   telemetry.NewLogger("check-engine"),
		tracer:   otel.Tracer("check-engine"),
	}
	e.initMetrics()
	return e
}

func (e *Engine) initMetrics() {
	meter := otel.Meter("check-engine")

	e.checksEvaluated, _ = meter.Int64Counter("valvo_engine_checks_evaluated_total",
		metric.WithDescription("Check evaluation passes"))
	e.resourcesEvaluated, _ = meter.Int64Counter("valvo_engine_resources_evaluated_total",
		metric.WithDescription("Per-resource verdicts produced"))
	e.checkFailures, _ = meter.Int64Counter("valvo_engine_check_failures_total",
		metric.WithDescription("Failed verdicts"))
	e.evaluationErrors, _ = meter.Int64Counter("valvo_engine_evaluation_errors_total",
		metric.WithDescription("Per-resource evaluation errors"))
	e.evaluationDuration, _ = meter.Float64Histogram("valvo_engine_evaluation_duration_seconds",
		metric.WithDescription("Duration of one check over one collection"),
		metric.WithUnit("s"))
}

// Evaluate runs one check over every resource in the collection, in
// collection order. The returned slice has exactly one CheckResult per
// resource.
func (e *Engine) Evaluate(ctx context.Context, check types.Check, collection types.ResourceCollection) []types.CheckResult {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate",
		trace.WithAttributes(
			attribute.String("check.id", check.ID),
			attribute.String("collection.connector", collection.SourceConnector),
			attribute.Int("collection.size", len(collection.Resources))))
	defer span.End()

	start := time.Now()
	e.logger.LogEvaluationStart(ctx, check.ID, len(collection.Resources))

	results := make([]types.CheckResult, 0, len(collection.Resources))
	var passed, failed, errored int

	for _, res := range collection.Resources {
		result := e.evaluateResource(ctx, check, res)
		switch {
		case result.Errored():
			errored++
		case result.Passed:
			passed++
		default:
			failed++
		}
		results = append(results, result)
	}

	attrs := metric.WithAttributes(
		attribute.String("check_id", check.ID),
		attribute.String("connector", collection.SourceConnector))
	e.checksEvaluated.Add(ctx, 1, attrs)
	e.resourcesEvaluated.Add(ctx, int64(len(results)), attrs)
	e.checkFailures.Add(ctx, int64(failed), attrs)
	e.evaluationErrors.Add(ctx, int64(errored), attrs)
	e.evaluationDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	e.logger.LogEvaluationComplete(ctx, check.ID, passed, failed, errored)

	return results
}

// EvaluateAll runs every check over every collection, preserving check order
// then collection order.
func (e *Engine) EvaluateAll(ctx context.Context, checks []types.Check, collections []types.ResourceCollection) []types.CheckResult {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate_all",
		trace.WithAttributes(
			attribute.Int("checks", len(checks)),
			attribute.Int("collections", len(collections))))
	defer span.End()

	var results []types.CheckResult
	for _, check := range checks {
		for _, collection := range collections {
			results = append(results, e.Evaluate(ctx, check, collection)...)
		}
	}
	return results
}

// evaluateResource produces one verdict. Resolution errors and custom logic
// failures land in the result's Error field with Passed false.
func (e *Engine) evaluateResource(ctx context.Context, check types.Check, res types.Resource) types.CheckResult {
	result := types.CheckResult{
		CheckID:       check.ID,
		CheckName:     check.Name,
		ResourceID:    res.ID,
		ExpectedValue: check.ExpectedValue,
	}

	value, err := resolver.Resolve(res.Data, check.FieldPath)
	if err != nil {
		e.logger.LogResourceError(ctx, check.ID, res.ID, err)
		result.Error = err.Error()
		return result
	}
	if !value.Found() {
		// Absent optional field: fail quietly, never conflate with null.
		return result
	}
	result.FetchedValue = value.Raw()

	var verdict bool
	if check.Operation.IsCustom() {
		verdict, err = e.executor.Run(ctx, check.ID, value.Raw(), check.ExpectedValue)
	} else {
		verdict, err = e.registry.Apply(check.Operation.Name, value.Raw(), check.ExpectedValue)
	}
	if err != nil {
		e.logger.LogResourceError(ctx, check.ID, res.ID, err)
		result.Error = err.Error()
		return result
	}

	result.Passed = verdict
	return result
}
