// Package checks loads and validates check definitions. All configuration
// defects are caught here, before any resource is evaluated.
package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yairfalse/valvo/logic"
	"github.com/yairfalse/valvo/ops"
	"github.com/yairfalse/valvo/resolver"
	"github.com/yairfalse/valvo/telemetry"
	"github.com/yairfalse/valvo/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// checkFile is the YAML shape of a check definition file.
type checkFile struct {
	Checks []types.Check `yaml:"checks"`
}

// Loader reads check definitions from YAML files and validates them against
// the operation registry and the logic executor.
type Loader struct {
	registry *ops.Registry
	executor *logic.Executor
	logger   *telemetry.Logger
	tracer   trace.Tracer
}

// NewLoader creates a loader.
func NewLoader(registry *ops.Registry, executor *logic.Executor) *Loader {
	return &Loader{
		registry: registry,
		executor: executor,
		logger:   telemetry.NewLogger("check-loader"),
		tracer:   otel.Tracer("check-loader"),
	}
}

// Load reads checks from a YAML file or from every .yaml/.yml file under a
// directory, and returns a validated registry.
func (l *Loader) Load(ctx context.Context, path string) (*Registry, error) {
	ctx, span := l.tracer.Start(ctx, "check_loader.load",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checks path: %w", err)
	}

	var checks []types.Check
	if info.IsDir() {
		checks, err = l.loadDir(ctx, path)
	} else {
		checks, err = l.loadFile(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	registry, err := NewRegistry(checks)
	if err != nil {
		return nil, fmt.Errorf("invalid check set in %s: %w", path, err)
	}

	l.logger.WithContext(ctx).Info().
		Str("path", path).
		Int("checks", registry.Len()).
		Msg("checks loaded")

	return registry, nil
}

func (l *Loader) loadDir(ctx context.Context, dir string) ([]types.Check, error) {
	var checks []types.Check

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isYAML(path) {
			return nil
		}
		loaded, err := l.loadFile(ctx, path)
		if err != nil {
			return err
		}
		checks = append(checks, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return checks, nil
}

func (l *Loader) loadFile(ctx context.Context, path string) ([]types.Check, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read check file %s: %w", path, err)
	}

	var file checkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse check file %s: %w", path, err)
	}

	for i := range file.Checks {
		if err := l.validate(ctx, &file.Checks[i]); err != nil {
			return nil, fmt.Errorf("check file %s: %w", path, err)
		}
		l.logger.LogCheckLoaded(ctx, file.Checks[i].ID, file.Checks[i].Name)
	}

	return file.Checks, nil
}

// validate rejects every configuration defect the engine must never see:
// malformed definitions, unknown operations, a check carrying both a named
// operation and custom logic, unparseable field paths, fragments that do not
// compile, and null expected values for operations that could never pass.
func (l *Loader) validate(ctx context.Context, c *types.Check) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if _, err := resolver.ParsePath(c.FieldPath); err != nil {
		return fmt.Errorf("check %s: %w", c.ID, err)
	}

	if c.Operation.IsCustom() {
		if err := l.executor.Compile(ctx, c.ID, c.Operation.CustomLogic); err != nil {
			return err
		}
		return nil
	}

	if !l.registry.Supported(c.Operation.Name) {
		return fmt.Errorf("check %s: %w", c.ID, &ops.UnsupportedOperationError{Name: c.Operation.Name})
	}

	if c.ExpectedValue == nil && requiresExpected(c.Operation.Name) {
		return fmt.Errorf("check %s: operation %s cannot be evaluated against a null expected value",
			c.ID, c.Operation.Name)
	}

	return nil
}

// requiresExpected reports operations for which a null expected value could
// never produce a pass.
func requiresExpected(name string) bool {
	switch name {
	case types.OpEqual, types.OpNotEqual:
		return false
	default:
		return true
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
