package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/valvo/types"
)

func TestRegistry_Apply(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		op       string
		fetched  any
		expected any
		want     bool
	}{
		{name: "equal booleans", op: types.OpEqual, fetched: true, expected: true, want: true},
		{name: "equal strings", op: types.OpEqual, fetched: "main", expected: "main", want: true},
		{name: "equal unifies numeric kinds", op: types.OpEqual, fetched: 5.0, expected: 5, want: true},
		{name: "no string-to-bool coercion", op: types.OpEqual, fetched: "true", expected: true, want: false},
		{name: "no bool-to-number coercion", op: types.OpEqual, fetched: true, expected: 1, want: false},
		{name: "null equals null", op: types.OpEqual, fetched: nil, expected: nil, want: true},
		{name: "null not equal to value", op: types.OpEqual, fetched: nil, expected: "x", want: false},
		{name: "equal sequences", op: types.OpEqual, fetched: []any{1, "a"}, expected: []any{1, "a"}, want: true},
		{name: "unequal sequences", op: types.OpEqual, fetched: []any{1, 2}, expected: []any{2, 1}, want: false},
		{name: "equal mappings", op: types.OpEqual, fetched: map[string]any{"k": 1}, expected: map[string]any{"k": 1.0}, want: true},
		{name: "not equal", op: types.OpNotEqual, fetched: "a", expected: "b", want: true},
		{name: "greater than", op: types.OpGreaterThan, fetched: 5, expected: 3, want: true},
		{name: "greater than false", op: types.OpGreaterThan, fetched: 3, expected: 5, want: false},
		{name: "less than", op: types.OpLessThan, fetched: 2, expected: 3, want: true},
		{name: "less than or equal", op: types.OpLessThanOrEqual, fetched: 3, expected: 3.0, want: true},
		{name: "greater than or equal", op: types.OpGreaterThanOrEqual, fetched: 4, expected: 4, want: true},
		{name: "contains element", op: types.OpContains, fetched: []any{"a", "b"}, expected: "a", want: true},
		{name: "contains element absent", op: types.OpContains, fetched: []any{"a", "b"}, expected: "c", want: false},
		{name: "contains substring", op: types.OpContains, fetched: "production-east", expected: "prod", want: true},
		{name: "contains mapping key", op: types.OpContains, fetched: map[string]any{"mfa": true}, expected: "mfa", want: true},
		{name: "not contains", op: types.OpNotContains, fetched: []any{"a"}, expected: "b", want: true},
		{name: "contains no coercion", op: types.OpContains, fetched: []any{1, 2}, expected: "1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Apply(tt.op, tt.fetched, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_UnknownOperation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Apply("BETWEEN", 1, 2)
	require.Error(t, err)

	var unsupported *UnsupportedOperationError
	assert.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "BETWEEN", unsupported.Name)
}

func TestRegistry_TypeMismatch(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		op       string
		fetched  any
		expected any
	}{
		{name: "ordering over string", op: types.OpGreaterThan, fetched: "high", expected: 3},
		{name: "ordering over bool", op: types.OpLessThan, fetched: true, expected: 1},
		{name: "ordering with null fetched", op: types.OpGreaterThan, fetched: nil, expected: 3},
		{name: "ordering with null expected", op: types.OpLessThanOrEqual, fetched: 3, expected: nil},
		{name: "contains over null", op: types.OpContains, fetched: nil, expected: "a"},
		{name: "contains over number", op: types.OpContains, fetched: 42, expected: 4},
		{name: "substring with non-string expected", op: types.OpContains, fetched: "abc", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Apply(tt.op, tt.fetched, tt.expected)
			require.Error(t, err)
			assert.False(t, got)

			var mismatch *TypeMismatchError
			assert.True(t, errors.As(err, &mismatch))
		})
	}
}

func TestRegistry_Supported(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Supported(types.OpEqual))
	assert.True(t, r.Supported(types.OpNotContains))
	assert.False(t, r.Supported("custom"))
	assert.False(t, r.Supported("IN"))
}
