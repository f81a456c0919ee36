package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_RunSimpleComparison(t *testing.T) {
	e := NewExecutor(0)
	ctx := context.Background()

	require.NoError(t, e.Compile(ctx, "check-1", "fetched_value > config_value"))

	passed, err := e.Run(ctx, "check-1", 5, 3)
	require.NoError(t, err)
	assert.True(t, passed)

	passed, err = e.Run(ctx, "check-1", 2, 3)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestExecutor_MultiLineFragment(t *testing.T) {
	e := NewExecutor(0)
	ctx := context.Background()

	fragment := "count(fetched_value) > 0\nevery member in fetched_value {\n\tmember != config_value\n}"
	require.NoError(t, e.Compile(ctx, "check-2", fragment))

	passed, err := e.Run(ctx, "check-2", []any{"alice", "bob"}, "root")
	require.NoError(t, err)
	assert.True(t, passed)

	passed, err = e.Run(ctx, "check-2", []any{"alice", "root"}, "root")
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestExecutor_TimeHelpers(t *testing.T) {
	e := NewExecutor(0)
	ctx := context.Background()

	// commit within the last 30 days
	fragment := "time.now_ns() - time.parse_rfc3339_ns(fetched_value) < ((30 * 24) * 3600) * 1000000000"
	require.NoError(t, e.Compile(ctx, "check-3", fragment))

	recent := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	passed, err := e.Run(ctx, "check-3", recent, nil)
	require.NoError(t, err)
	assert.True(t, passed)

	stale := time.Now().Add(-90 * 24 * time.Hour).Format(time.RFC3339)
	passed, err = e.Run(ctx, "check-3", stale, nil)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestExecutor_CompileErrors(t *testing.T) {
	e := NewExecutor(0)
	ctx := context.Background()

	tests := []struct {
		name     string
		fragment string
	}{
		{name: "empty fragment", fragment: "   "},
		{name: "syntax error", fragment: "fetched_value >"},
		{name: "unknown builtin", fragment: "frobnicate(fetched_value)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Compile(ctx, "bad", tt.fragment)
			require.Error(t, err)

			var logicErr *CustomLogicError
			assert.True(t, errors.As(err, &logicErr))
		})
	}
}

// A failing fragment must produce a reported error, never a silent verdict.
func TestExecutor_RuntimeErrorIsReported(t *testing.T) {
	e := NewExecutor(0)
	ctx := context.Background()

	require.NoError(t, e.Compile(ctx, "check-4", "time.parse_rfc3339_ns(fetched_value) > 0"))

	// non-timestamp input makes the builtin fail
	passed, err := e.Run(ctx, "check-4", "not a timestamp", nil)
	require.Error(t, err)
	assert.False(t, passed)

	var logicErr *CustomLogicError
	assert.True(t, errors.As(err, &logicErr))
	assert.Equal(t, "check-4", logicErr.CheckID)

	// the executor stays usable for the next resource
	ok, err := e.Run(ctx, "check-4", time.Now().Format(time.RFC3339), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecutor_RunWithoutCompile(t *testing.T) {
	e := NewExecutor(0)

	_, err := e.Run(context.Background(), "never-compiled", 1, 2)
	require.Error(t, err)
}

func TestExecutor_NullValues(t *testing.T) {
	e := NewExecutor(0)
	ctx := context.Background()

	require.NoError(t, e.Compile(ctx, "check-5", "fetched_value == config_value"))

	passed, err := e.Run(ctx, "check-5", nil, nil)
	require.NoError(t, err)
	assert.True(t, passed)
}
