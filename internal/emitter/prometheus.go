package emitter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yairfalse/valvo/report"
)

// PrometheusEmitter emits compliance metrics in Prometheus format via OTEL.
type PrometheusEmitter struct {
	meter metric.Meter

	// Metrics
	checkStatus        metric.Int64ObservableGauge
	passTotal          metric.Int64Counter
	failTotal          metric.Int64Counter
	errorTotal         metric.Int64Counter
	resourcesEvaluated metric.Int64Counter

	// State for observable gauge
	mu     sync.RWMutex
	latest *report.Report
}

// NewPrometheusEmitter creates a Prometheus emitter.
func NewPrometheusEmitter() (*PrometheusEmitter, error) {
	meter := otel.Meter("valvo")

	e := &PrometheusEmitter{meter: meter}

	if err := e.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return e, nil
}

func (e *PrometheusEmitter) initMetrics() error {
	var err error

	// Check status gauge - 1 compliant, 0 non-compliant, -1 errored
	e.checkStatus, err = e.meter.Int64ObservableGauge(
		"valvo_check_status",
		metric.WithDescription("Latest status per check"),
		metric.WithInt64Callback(e.observeChecks),
	)
	if err != nil {
		return fmt.Errorf("create check_status gauge: %w", err)
	}

	e.passTotal, err = e.meter.Int64Counter(
		"valvo_results_passed_total",
		metric.WithDescription("Total passed verdicts"),
	)
	if err != nil {
		return fmt.Errorf("create results_passed counter: %w", err)
	}

	e.failTotal, err = e.meter.Int64Counter(
		"valvo_results_failed_total",
		metric.WithDescription("Total failed verdicts"),
	)
	if err != nil {
		return fmt.Errorf("create results_failed counter: %w", err)
	}

	e.errorTotal, err = e.meter.Int64Counter(
		"valvo_results_errored_total",
		metric.WithDescription("Total errored verdicts"),
	)
	if err != nil {
		return fmt.Errorf("create results_errored counter: %w", err)
	}

	e.resourcesEvaluated, err = e.meter.Int64Counter(
		"valvo_resources_evaluated_total",
		metric.WithDescription("Total resource evaluations emitted"),
	)
	if err != nil {
		return fmt.Errorf("create resources_evaluated counter: %w", err)
	}

	return nil
}

// Emit records the evaluation pass as metrics.
func (e *PrometheusEmitter) Emit(ctx context.Context, r *report.Report) error {
	for _, cs := range r.Checks {
		attrs := metric.WithAttributes(
			attribute.String("check_id", cs.Check.ID),
			attribute.String("severity", cs.Check.Severity),
		)
		e.passTotal.Add(ctx, int64(cs.Passed), attrs)
		e.failTotal.Add(ctx, int64(cs.Failed), attrs)
		e.errorTotal.Add(ctx, int64(cs.Errored), attrs)
		e.resourcesEvaluated.Add(ctx, int64(len(cs.Results)), attrs)
	}

	e.mu.Lock()
	e.latest = r
	e.mu.Unlock()

	log.Info().
		Int("checks", r.TotalChecks).
		Int("passed", r.TotalPassed).
		Int("failed", r.TotalFailed).
		Int("errored", r.TotalErrored).
		Msg("compliance metrics emitted")

	return nil
}

// observeChecks reports the latest status per check.
func (e *PrometheusEmitter) observeChecks(_ context.Context, observer metric.Int64Observer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.latest == nil {
		return nil
	}

	for _, cs := range e.latest.Checks {
		var status int64
		switch cs.Status {
		case report.StatusCompliant:
			status = 1
		case report.StatusError:
			status = -1
		}
		observer.Observe(status,
			metric.WithAttributes(
				attribute.String("check_id", cs.Check.ID),
				attribute.String("check_name", cs.Check.Name),
				attribute.String("severity", cs.Check.Severity),
			))
	}

	return nil
}

// Close implements Emitter.
func (e *PrometheusEmitter) Close() error {
	return nil
}
