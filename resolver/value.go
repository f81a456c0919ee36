package resolver

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Kind enumerates the shapes a resolved value can take. Dispatching on Kind
// keeps the resolver's type handling explicit instead of reflective.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a tagged wrapper around one node of a resource graph. The zero
// Value is the Missing sentinel returned for failed lookups.
type Value struct {
	raw   any
	found bool
}

// Missing is the sentinel for a lookup that found nothing.
var Missing = Value{}

// ValueOf wraps a raw graph node.
func ValueOf(raw any) Value {
	return Value{raw: raw, found: true}
}

// Found reports whether the value exists in the graph.
func (v Value) Found() bool {
	return v.found
}

// Raw returns the underlying node, nil when missing.
func (v Value) Raw() any {
	return v.raw
}

// Kind classifies the underlying node.
func (v Value) Kind() Kind {
	if !v.found {
		return KindMissing
	}
	switch v.raw.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return KindNumber
	case []any:
		return KindSequence
	case map[string]any:
		return KindMapping
	}
	// Typed models produced by schema loaders: classify via reflection.
	rv := reflect.ValueOf(v.raw)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map, reflect.Struct:
		return KindMapping
	default:
		return KindString
	}
}

// Field performs attribute-or-key lookup: map key for mappings, exported
// struct field (honoring json tags) for model objects. Anything else yields
// Missing.
func (v Value) Field(name string) Value {
	if !v.found {
		return Missing
	}
	switch node := v.raw.(type) {
	case map[string]any:
		child, ok := node[name]
		if !ok {
			return Missing
		}
		return ValueOf(child)
	}
	rv := reflect.ValueOf(v.raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Missing
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Missing
		}
		child := rv.MapIndex(reflect.ValueOf(name))
		if !child.IsValid() {
			return Missing
		}
		return ValueOf(child.Interface())
	case reflect.Struct:
		return structField(rv, name)
	default:
		return Missing
	}
}

// structField looks up an exported field by json tag first, then by name.
func structField(rv reflect.Value, name string) Value {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name || (tag == "" && f.Name == name) {
			return ValueOf(rv.Field(i).Interface())
		}
	}
	return Missing
}

// Index returns the i-th element of a sequence, Missing past the bounds or
// for non-sequences.
func (v Value) Index(i int) Value {
	elems, ok := v.Elements()
	if !ok || i < 0 || i >= len(elems) {
		return Missing
	}
	return elems[i]
}

// Elements returns the sequence elements, false for non-sequences.
func (v Value) Elements() ([]Value, bool) {
	if v.Kind() != KindSequence {
		return nil, false
	}
	if node, ok := v.raw.([]any); ok {
		out := make([]Value, len(node))
		for i, el := range node {
			out[i] = ValueOf(el)
		}
		return out, true
	}
	rv := reflect.ValueOf(v.raw)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	out := make([]Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = ValueOf(rv.Index(i).Interface())
	}
	return out, true
}

// Len counts sequence elements, mapping keys, or string characters. Missing
// and null are not countable: reporting their size as zero would mask absent
// data.
func (v Value) Len() (int, error) {
	switch v.Kind() {
	case KindString:
		return utf8.RuneCountInString(v.raw.(string)), nil
	case KindSequence:
		elems, _ := v.Elements()
		return len(elems), nil
	case KindMapping:
		if node, ok := v.raw.(map[string]any); ok {
			return len(node), nil
		}
		rv := reflect.ValueOf(v.raw)
		if rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Map {
			return rv.Len(), nil
		}
		return rv.NumField(), nil
	default:
		return 0, fmt.Errorf("cannot take length of %s value", v.Kind())
	}
}
