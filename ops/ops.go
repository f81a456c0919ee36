// Package ops maps operation names to binary predicates with type-tolerant
// but coercion-free comparison semantics.
package ops

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/yairfalse/valvo/types"
)

// UnsupportedOperationError reports an unknown operation name. The checks
// loader surfaces this at load time so it never fires per resource.
type UnsupportedOperationError struct {
	Name string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %q", e.Name)
}

// TypeMismatchError reports operands an operation cannot compare.
type TypeMismatchError struct {
	Op     string
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("operation %s: %s", e.Op, e.Reason)
}

type predicate func(fetched, expected any) (bool, error)

// Registry maps operation names to predicates. Built once at startup,
// read-only thereafter.
type Registry struct {
	ops map[string]predicate
}

// NewRegistry creates a registry with the built-in operations.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]predicate)}

	r.ops[types.OpEqual] = func(fetched, expected any) (bool, error) {
		return equalValues(fetched, expected), nil
	}
	r.ops[types.OpNotEqual] = func(fetched, expected any) (bool, error) {
		return !equalValues(fetched, expected), nil
	}
	r.ops[types.OpLessThan] = ordering(types.OpLessThan, func(a, b float64) bool { return a < b })
	r.ops[types.OpGreaterThan] = ordering(types.OpGreaterThan, func(a, b float64) bool { return a > b })
	r.ops[types.OpLessThanOrEqual] = ordering(types.OpLessThanOrEqual, func(a, b float64) bool { return a <= b })
	r.ops[types.OpGreaterThanOrEqual] = ordering(types.OpGreaterThanOrEqual, func(a, b float64) bool { return a >= b })
	r.ops[types.OpContains] = func(fetched, expected any) (bool, error) {
		return contains(types.OpContains, fetched, expected)
	}
	r.ops[types.OpNotContains] = func(fetched, expected any) (bool, error) {
		ok, err := contains(types.OpNotContains, fetched, expected)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}

	return r
}

// Supported reports whether the operation name is registered.
func (r *Registry) Supported(name string) bool {
	_, ok := r.ops[name]
	return ok
}

// Apply runs the named operation over the operands.
func (r *Registry) Apply(name string, fetched, expected any) (bool, error) {
	op, ok := r.ops[name]
	if !ok {
		return false, &UnsupportedOperationError{Name: name}
	}
	return op(fetched, expected)
}

// ordering builds a numeric comparison predicate. A null or non-numeric
// operand is a type mismatch, never a silent false comparison.
func ordering(name string, cmp func(a, b float64) bool) predicate {
	return func(fetched, expected any) (bool, error) {
		a, ok := asFloat(fetched)
		if !ok {
			return false, &TypeMismatchError{Op: name, Reason: describeOperand("fetched value", fetched)}
		}
		b, ok := asFloat(expected)
		if !ok {
			return false, &TypeMismatchError{Op: name, Reason: describeOperand("expected value", expected)}
		}
		return cmp(a, b), nil
	}
}

func describeOperand(role string, v any) string {
	if v == nil {
		return role + " is null, not orderable"
	}
	return fmt.Sprintf("%s of type %T is not orderable", role, v)
}

// contains tests membership: element of a sequence, substring of a string, or
// key of a mapping.
func contains(name string, fetched, expected any) (bool, error) {
	switch f := fetched.(type) {
	case nil:
		return false, &TypeMismatchError{Op: name, Reason: "cannot test membership in null fetched value"}
	case string:
		sub, ok := expected.(string)
		if !ok {
			return false, &TypeMismatchError{Op: name, Reason: fmt.Sprintf("substring test needs a string expected value, got %T", expected)}
		}
		return strings.Contains(f, sub), nil
	case []any:
		for _, el := range f {
			if equalValues(el, expected) {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		key, ok := expected.(string)
		if !ok {
			return false, &TypeMismatchError{Op: name, Reason: fmt.Sprintf("mapping membership needs a string expected value, got %T", expected)}
		}
		_, present := f[key]
		return present, nil
	}

	// Typed slices from model objects.
	rv := reflect.ValueOf(fetched)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if equalValues(rv.Index(i).Interface(), expected) {
				return true, nil
			}
		}
		return false, nil
	}

	return false, &TypeMismatchError{Op: name, Reason: fmt.Sprintf("fetched value of type %T supports no membership test", fetched)}
}

// equalValues is deep equality without cross-kind coercion: "true" never
// equals true. Numeric kinds are unified so an int from YAML config matches a
// float from decoded JSON.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	if _, ok := asFloat(b); ok {
		return false
	}

	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, present := bv[k]
			if !present || !equalValues(v, bvv) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// asFloat unifies numeric kinds. Booleans are deliberately excluded so
// true never compares equal to 1.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
