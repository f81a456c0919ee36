package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valvo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `version: "1"
checks_path: checks/
snapshots:
  - snapshots/github.json
  - snapshots/aws.yaml
output: json
logic:
  timeout: 2s
watch:
  interval: 1m
  metrics_addr: ":2112"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "checks/", cfg.ChecksPath)
	assert.Len(t, cfg.Snapshots, 2)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 2*time.Second, cfg.Logic.Timeout)
	assert.Equal(t, time.Minute, cfg.Watch.Interval)
	assert.Equal(t, ":2112", cfg.Watch.MetricsAddr)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `version: "1"
checks_path: checks/
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Logic.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, ":9090", cfg.Watch.MetricsAddr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing version", content: "checks_path: checks/\n"},
		{name: "missing checks_path", content: "version: \"1\"\n"},
		{name: "bad output", content: "version: \"1\"\nchecks_path: checks/\noutput: csv\n"},
		{name: "bad log level", content: "version: \"1\"\nchecks_path: checks/\nlog_level: loud\n"},
		{name: "not yaml", content: "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
