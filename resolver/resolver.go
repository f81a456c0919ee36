// Package resolver walks dot-notation field paths over nested resource
// graphs. It is a pure function of its inputs and holds no state.
package resolver

import "fmt"

// ResolutionError describes a field path that could not be resolved.
type ResolutionError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *ResolutionError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("cannot resolve %q at %q: %s", e.Path, e.Segment, e.Reason)
	}
	return fmt.Sprintf("cannot resolve %q: %s", e.Path, e.Reason)
}

// Resolve evaluates a field path against a resource graph. Failed lookups
// (missing key, index out of bounds) yield the Missing sentinel so checks
// over optional fields stay resilient; only malformed paths and len() over
// absent data return errors.
func Resolve(data any, path string) (Value, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Missing, err
	}
	return p.Resolve(data)
}

// ResolveStrict is Resolve with every failed lookup reported as a
// ResolutionError. Used by check validation to catch broken field paths.
func ResolveStrict(data any, path string) (Value, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Missing, err
	}
	return p.ResolveStrict(data)
}

// Resolve evaluates the parsed path against a resource graph.
func (p Path) Resolve(data any) (Value, error) {
	return p.resolve(data, false)
}

// ResolveStrict evaluates the parsed path, failing on any missing lookup.
func (p Path) ResolveStrict(data any) (Value, error) {
	return p.resolve(data, true)
}

func (p Path) resolve(data any, strict bool) (Value, error) {
	v, err := p.walk(ValueOf(data), p.segments, strict)
	if err != nil {
		return Missing, err
	}

	if p.length {
		// len() of absent data is an error, never zero.
		if !v.Found() {
			return Missing, &ResolutionError{Path: p.raw, Reason: "len() of a value that was not found"}
		}
		n, err := v.Len()
		if err != nil {
			return Missing, &ResolutionError{Path: p.raw, Reason: err.Error()}
		}
		return ValueOf(n), nil
	}

	if strict && !v.Found() {
		return Missing, &ResolutionError{Path: p.raw, Reason: "value not found"}
	}
	return v, nil
}

func (p Path) walk(v Value, segs []segment, strict bool) (Value, error) {
	for i, seg := range segs {
		if seg.wildcard {
			return p.walkWildcard(v, seg, segs[i+1:], strict)
		}

		v = v.Field(seg.name)
		if seg.index >= 0 && v.Found() {
			v = v.Index(seg.index)
		}
		if !v.Found() {
			if strict {
				return Missing, &ResolutionError{Path: p.raw, Segment: seg.name, Reason: "not found"}
			}
			return Missing, nil
		}
	}
	return v, nil
}

// walkWildcard resolves the remaining path against every element of the
// current sequence. Nested wildcard results flatten one level; elements where
// the remainder is not found are skipped unless strict.
func (p Path) walkWildcard(v Value, seg segment, rest []segment, strict bool) (Value, error) {
	cur := v.Field(seg.name)
	if !cur.Found() {
		if strict {
			return Missing, &ResolutionError{Path: p.raw, Segment: seg.name, Reason: "not found"}
		}
		return Missing, nil
	}

	elems, ok := cur.Elements()
	if !ok {
		return Missing, &ResolutionError{
			Path:    p.raw,
			Segment: seg.name,
			Reason:  fmt.Sprintf("wildcard over %s value, expected sequence", cur.Kind()),
		}
	}
	if len(rest) == 0 {
		return cur, nil
	}

	flatten := false
	for _, r := range rest {
		if r.wildcard {
			flatten = true
		}
	}

	out := make([]any, 0, len(elems))
	for _, el := range elems {
		rv, err := p.walk(el, rest, strict)
		if err != nil {
			return Missing, err
		}
		if !rv.Found() {
			if strict {
				return Missing, &ResolutionError{Path: p.raw, Segment: seg.name, Reason: "element did not resolve"}
			}
			continue
		}
		if flatten {
			inner, ok := rv.Elements()
			if !ok {
				out = append(out, rv.Raw())
				continue
			}
			for _, iv := range inner {
				out = append(out, iv.Raw())
			}
			continue
		}
		out = append(out, rv.Raw())
	}
	return ValueOf(out), nil
}
