package checks

import (
	"fmt"

	"github.com/yairfalse/valvo/types"
)

// Registry holds validated checks. Built once at startup and read-only
// thereafter; it is passed into the engine explicitly, never looked up from
// package state.
type Registry struct {
	checks []types.Check
	byID   map[string]int
	byName map[string]int
}

// NewRegistry builds a registry, rejecting duplicate ids and names.
func NewRegistry(checks []types.Check) (*Registry, error) {
	r := &Registry{
		checks: checks,
		byID:   make(map[string]int, len(checks)),
		byName: make(map[string]int, len(checks)),
	}

	for i, c := range checks {
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate check id %q", c.ID)
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate check name %q", c.Name)
		}
		r.byID[c.ID] = i
		r.byName[c.Name] = i
	}

	return r, nil
}

// Checks returns all checks in load order.
func (r *Registry) Checks() []types.Check {
	return r.checks
}

// Get looks a check up by id.
func (r *Registry) Get(id string) (types.Check, bool) {
	i, ok := r.byID[id]
	if !ok {
		return types.Check{}, false
	}
	return r.checks[i], true
}

// GetByName looks a check up by its human identifier.
func (r *Registry) GetByName(name string) (types.Check, bool) {
	i, ok := r.byName[name]
	if !ok {
		return types.Check{}, false
	}
	return r.checks[i], true
}

// Len returns the number of loaded checks.
func (r *Registry) Len() int {
	return len(r.checks)
}
