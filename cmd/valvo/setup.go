package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yairfalse/valvo/checks"
	"github.com/yairfalse/valvo/config"
	"github.com/yairfalse/valvo/connector"
	"github.com/yairfalse/valvo/engine"
	"github.com/yairfalse/valvo/logic"
	"github.com/yairfalse/valvo/ops"
	"github.com/yairfalse/valvo/types"
)

// evaluationSetup wires the engine, loaded checks and connectors from the
// configuration file. Shared by run, validate, report and watch.
type evaluationSetup struct {
	cfg        *config.Config
	registry   *checks.Registry
	engine     *engine.Engine
	connectors []connector.Connector
}

func setup(ctx context.Context) (*evaluationSetup, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// --debug overrides the configured level.
	if !debug {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	opsRegistry := ops.NewRegistry()
	executor := logic.NewExecutor(cfg.Logic.Timeout)

	loader := checks.NewLoader(opsRegistry, executor)
	registry, err := loader.Load(ctx, cfg.ChecksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load checks: %w", err)
	}

	var conns []connector.Connector
	if len(cfg.Snapshots) > 0 {
		snap := connector.NewSnapshotConnector("snapshot", cfg.Snapshots)
		connector.Register(snap)
		conns = append(conns, snap)
	}

	return &evaluationSetup{
		cfg:        cfg,
		registry:   registry,
		engine:     engine.New(opsRegistry, executor),
		connectors: conns,
	}, nil
}

// collect gathers collections from every configured connector.
func (s *evaluationSetup) collect(ctx context.Context) ([]types.ResourceCollection, error) {
	var collections []types.ResourceCollection
	for _, c := range s.connectors {
		collected, err := c.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("connector %s: %w", c.Name(), err)
		}
		collections = append(collections, collected...)
	}
	return collections, nil
}
