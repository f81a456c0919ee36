package checks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/valvo/logic"
	"github.com/yairfalse/valvo/ops"
	"github.com/yairfalse/valvo/types"
)

func newTestLoader() *Loader {
	return NewLoader(ops.NewRegistry(), logic.NewExecutor(0))
}

func writeChecks(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeChecks(t, "checks.yaml", `checks:
  - id: gh-1
    name: repositories must be private
    field_path: repo.private
    operation:
      name: EQUAL
    expected_value: true
    severity: high
    category: github
    tags: [repository, visibility]
    controls: ["NIST-800-53:AC-3"]
  - id: gh-2
    name: repository pushed recently
    field_path: pushed_at
    operation:
      name: custom
      custom_logic: "time.now_ns() - time.parse_rfc3339_ns(fetched_value) < ((30 * 24) * 3600) * 1000000000"
`)

	registry, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())

	check, ok := registry.Get("gh-1")
	require.True(t, ok)
	assert.Equal(t, "repositories must be private", check.Name)
	assert.Equal(t, "high", check.Severity)
	assert.Equal(t, []string{"NIST-800-53:AC-3"}, check.Controls)
	assert.Equal(t, true, check.ExpectedValue)

	custom, ok := registry.GetByName("repository pushed recently")
	require.True(t, ok)
	assert.True(t, custom.Operation.IsCustom())
}

func TestLoader_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "github.yaml"), []byte(`checks:
  - id: gh-1
    name: private repos
    field_path: repo.private
    operation: {name: EQUAL}
    expected_value: true
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aws.yml"), []byte(`checks:
  - id: aws-1
    name: bucket versioning enabled
    field_path: versioning.enabled
    operation: {name: EQUAL}
    expected_value: true
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	registry, err := newTestLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())
}

func TestLoader_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown operation",
			content: `checks:
  - id: c1
    name: bad op
    field_path: a.b
    operation: {name: BETWEEN}
    expected_value: 1
`,
		},
		{
			name: "operation with custom logic attached",
			content: `checks:
  - id: c1
    name: conflicting
    field_path: a.b
    operation:
      name: EQUAL
      custom_logic: "fetched_value == config_value"
    expected_value: 1
`,
		},
		{
			name: "custom without logic",
			content: `checks:
  - id: c1
    name: no fragment
    field_path: a.b
    operation: {name: custom}
`,
		},
		{
			name: "uncompilable custom logic",
			content: `checks:
  - id: c1
    name: broken fragment
    field_path: a.b
    operation:
      name: custom
      custom_logic: "fetched_value >"
`,
		},
		{
			name: "malformed field path",
			content: `checks:
  - id: c1
    name: bad path
    field_path: "items[xyz].b"
    operation: {name: EQUAL}
    expected_value: 1
`,
		},
		{
			name: "ordering against null expected",
			content: `checks:
  - id: c1
    name: null ordering
    field_path: a.b
    operation: {name: GREATER_THAN}
`,
		},
		{
			name: "missing id",
			content: `checks:
  - name: no id
    field_path: a.b
    operation: {name: EQUAL}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeChecks(t, "checks.yaml", tt.content)
			_, err := newTestLoader().Load(context.Background(), path)
			assert.Error(t, err)
		})
	}
}

func TestLoader_DuplicateChecks(t *testing.T) {
	path := writeChecks(t, "checks.yaml", `checks:
  - id: c1
    name: first
    field_path: a.b
    operation: {name: EQUAL}
    expected_value: 1
  - id: c1
    name: second
    field_path: a.c
    operation: {name: EQUAL}
    expected_value: 2
`)

	_, err := newTestLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewRegistry([]types.Check{
		{ID: "c1", Name: "first", FieldPath: "a", Operation: types.Operation{Name: types.OpEqual}},
		{ID: "c2", Name: "second", FieldPath: "b", Operation: types.Operation{Name: types.OpEqual}},
	})
	require.NoError(t, err)

	check, ok := registry.Get("c2")
	assert.True(t, ok)
	assert.Equal(t, "second", check.Name)

	_, ok = registry.Get("c3")
	assert.False(t, ok)

	assert.Len(t, registry.Checks(), 2)
	assert.Equal(t, "c1", registry.Checks()[0].ID)
}

func TestRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]types.Check{
		{ID: "c1", Name: "same", FieldPath: "a", Operation: types.Operation{Name: types.OpEqual}},
		{ID: "c2", Name: "same", FieldPath: "b", Operation: types.Operation{Name: types.OpEqual}},
	})
	assert.Error(t, err)
}
