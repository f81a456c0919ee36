package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/valvo/connector"
	"github.com/yairfalse/valvo/engine"
	"github.com/yairfalse/valvo/logic"
	"github.com/yairfalse/valvo/ops"
	"github.com/yairfalse/valvo/report"
	"github.com/yairfalse/valvo/types"
)

type staticConnector struct {
	collections []types.ResourceCollection
}

func (s *staticConnector) Name() string { return "static" }

func (s *staticConnector) Collect(ctx context.Context) ([]types.ResourceCollection, error) {
	return s.collections, nil
}

type recordingEmitter struct {
	mu      sync.Mutex
	reports []*report.Report
}

func (r *recordingEmitter) Emit(ctx context.Context, rep *report.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *recordingEmitter) Close() error { return nil }

func (r *recordingEmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func newTestDaemon(interval time.Duration, emit *recordingEmitter) *Daemon {
	conn := &staticConnector{collections: []types.ResourceCollection{{
		SourceConnector: "static",
		TotalCount:      1,
		Resources: []types.Resource{{
			ID:              "r1",
			SourceConnector: "static",
			Data:            map[string]any{"repo": map[string]any{"private": true}},
		}},
	}}}

	return NewDaemon(Config{
		Interval: interval,
		Checks: []types.Check{{
			ID:            "c1",
			Name:          "private repos",
			FieldPath:     "repo.private",
			Operation:     types.Operation{Name: types.OpEqual},
			ExpectedValue: true,
		}},
		Connectors: []connector.Connector{conn},
		Engine:     engine.New(ops.NewRegistry(), logic.NewExecutor(time.Second)),
		Emitter:    emit,
	})
}

func TestNewDaemon(t *testing.T) {
	d := newTestDaemon(time.Minute, &recordingEmitter{})

	assert.NotNil(t, d)
	assert.Equal(t, time.Minute, d.interval)
	assert.Equal(t, int64(0), d.PassCount())
}

func TestDaemon_RunsInitialPass(t *testing.T) {
	emit := &recordingEmitter{}
	d := newTestDaemon(time.Hour, emit)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return d.PassCount() >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)

	assert.GreaterOrEqual(t, emit.count(), 1)
	first := emit.reports[0]
	assert.Equal(t, 1, first.TotalChecks)
	assert.Equal(t, 1, first.TotalPassed)
}

func TestDaemon_RunsOnInterval(t *testing.T) {
	emit := &recordingEmitter{}
	d := newTestDaemon(20*time.Millisecond, emit)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return d.PassCount() >= 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
}

func TestDaemon_Health(t *testing.T) {
	d := newTestDaemon(time.Minute, &recordingEmitter{})

	health := d.Health()
	assert.Equal(t, "healthy", health.Status)
	assert.GreaterOrEqual(t, health.Uptime, int64(0))
}
