// Package daemon runs continuous evaluation passes: collect, evaluate, emit,
// sleep. Each pass is independent; the engine holds no state between runs.
package daemon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yairfalse/valvo/connector"
	"github.com/yairfalse/valvo/engine"
	"github.com/yairfalse/valvo/internal/emitter"
	"github.com/yairfalse/valvo/report"
	"github.com/yairfalse/valvo/telemetry"
	"github.com/yairfalse/valvo/types"
)

// Config holds daemon configuration
type Config struct {
	Interval   time.Duration
	Checks     []types.Check
	Connectors []connector.Connector
	Engine     *engine.Engine
	Emitter    emitter.Emitter
}

// Daemon manages continuous evaluation
type Daemon struct {
	interval   time.Duration
	checks     []types.Check
	connectors []connector.Connector
	engine     *engine.Engine
	emitter    emitter.Emitter
	logger     *telemetry.Logger
	startTime  time.Time
	passCount  atomic.Int64
}

// NewDaemon creates a new daemon instance
func NewDaemon(config Config) *Daemon {
	return &Daemon{
		interval:   config.Interval,
		checks:     config.Checks,
		connectors: config.Connectors,
		engine:     config.Engine,
		emitter:    config.Emitter,
		logger:     telemetry.NewLogger("daemon"),
		startTime:  time.Now(),
	}
}

// Start begins the evaluation loop. An initial pass runs immediately; later
// passes run on the interval until the context is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.runPass(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.runPass(ctx)
		}
	}
}

func (d *Daemon) runPass(ctx context.Context) {
	pass := d.passCount.Add(1)
	start := time.Now()

	var collections []types.ResourceCollection
	for _, c := range d.connectors {
		collected, err := c.Collect(ctx)
		if err != nil {
			d.logger.WithContext(ctx).Error().
				Err(err).
				Str("connector", c.Name()).
				Msg("collection failed, skipping connector this pass")
			continue
		}
		collections = append(collections, collected...)
	}

	results := d.engine.EvaluateAll(ctx, d.checks, collections)
	r := report.Build(d.checks, results)

	telemetry.RecordEvaluationPass(ctx, telemetry.PassStats{
		Pass:      pass,
		Collected: totalResources(collections),
		Checks:    r.TotalChecks,
		Passed:    r.TotalPassed,
		Failed:    r.TotalFailed,
		Errored:   r.TotalErrored,
		Duration:  time.Since(start),
	})

	if d.emitter != nil {
		if err := d.emitter.Emit(ctx, r); err != nil {
			d.logger.WithContext(ctx).Error().
				Err(err).
				Msg("failed to emit report")
		}
	}
}

func totalResources(collections []types.ResourceCollection) int {
	total := 0
	for _, c := range collections {
		total += len(c.Resources)
	}
	return total
}

// Health returns daemon health status
func (d *Daemon) Health() HealthStatus {
	return HealthStatus{
		Status: "healthy",
		Uptime: int64(time.Since(d.startTime).Seconds()),
	}
}

// HealthStatus represents daemon health
type HealthStatus struct {
	Status string
	Uptime int64
}

// PassCount returns total evaluation passes run
func (d *Daemon) PassCount() int64 {
	return d.passCount.Load()
}
