package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Version    string      `yaml:"version"`
	ChecksPath string      `yaml:"checks_path"`
	Snapshots  []string    `yaml:"snapshots,omitempty"`
	Output     string      `yaml:"output,omitempty"`
	LogLevel   string      `yaml:"log_level,omitempty"`
	Logic      LogicConfig `yaml:"logic,omitempty"`
	Watch      WatchConfig `yaml:"watch,omitempty"`
}

// LogicConfig bounds custom logic execution
type LogicConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig controls watch mode
type WatchConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = "table"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Logic.Timeout == 0 {
		c.Logic.Timeout = 5 * time.Second
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = 5 * time.Minute
	}
	if c.Watch.MetricsAddr == "" {
		c.Watch.MetricsAddr = ":9090"
	}
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.ChecksPath == "" {
		return fmt.Errorf("checks_path is required")
	}
	if c.Output != "table" && c.Output != "json" {
		return fmt.Errorf("output must be table or json, got %q", c.Output)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if c.Logic.Timeout < 0 {
		return fmt.Errorf("logic timeout cannot be negative")
	}
	return nil
}
