// Package connector defines how resource collections enter the engine.
// Provider API calls live in external collectors; connectors here only hand
// over the object graphs those collectors produced.
package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yairfalse/valvo/types"
)

// Connector produces resource collections for evaluation.
type Connector interface {
	// Name identifies the connector (tagged into collections it produces).
	Name() string

	// Collect returns the connector's resource collections.
	Collect(ctx context.Context) ([]types.ResourceCollection, error)
}

var (
	mu         sync.RWMutex
	connectors = make(map[string]Connector)
)

// Register adds a connector. Later registrations with the same name replace
// earlier ones.
func Register(c Connector) {
	mu.Lock()
	defer mu.Unlock()
	connectors[c.Name()] = c
}

// Get returns a connector by name.
func Get(name string) (Connector, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := connectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector %q", name)
	}
	return c, nil
}

// All returns all registered connectors, ordered by name so collection
// passes stay deterministic.
func All() []Connector {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Connector, 0, len(connectors))
	for _, c := range connectors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
