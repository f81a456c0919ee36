package resolver

import (
	"fmt"
	"strconv"
	"strings"
)

// segment is one step of a field path: a name, optionally followed by a fixed
// index or a wildcard.
type segment struct {
	name     string
	index    int // -1 when no index
	wildcard bool
}

// Path is a parsed field path expression.
type Path struct {
	raw      string
	segments []segment
	length   bool // wrapped in len(...)
}

// String returns the original expression.
func (p Path) String() string {
	return p.raw
}

// HasWildcard reports whether any segment maps over sequence elements.
func (p Path) HasWildcard() bool {
	for _, seg := range p.segments {
		if seg.wildcard {
			return true
		}
	}
	return false
}

// ParsePath parses a field path expression: dot-separated segments, `[N]` for
// a fixed index, `[*]` or `[]` to map over all elements, and an optional
// whole-path `len(...)` wrapper.
func ParsePath(expr string) (Path, error) {
	p := Path{raw: expr}

	s := strings.TrimSpace(expr)
	if s == "" {
		return Path{}, fmt.Errorf("field path cannot be empty")
	}
	if strings.HasPrefix(s, "len(") {
		if !strings.HasSuffix(s, ")") {
			return Path{}, fmt.Errorf("field path %q: unclosed len(", expr)
		}
		p.length = true
		s = strings.TrimSpace(s[len("len(") : len(s)-1])
		if s == "" {
			return Path{}, fmt.Errorf("field path %q: len() needs an inner path", expr)
		}
	}

	for _, part := range strings.Split(s, ".") {
		seg, err := parseSegment(part)
		if err != nil {
			return Path{}, fmt.Errorf("field path %q: %w", expr, err)
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

func parseSegment(part string) (segment, error) {
	seg := segment{index: -1}

	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return segment{}, fmt.Errorf("empty segment")
		}
		seg.name = part
		return seg, nil
	}

	if !strings.HasSuffix(part, "]") {
		return segment{}, fmt.Errorf("segment %q: unclosed bracket", part)
	}
	seg.name = part[:open]
	if seg.name == "" {
		return segment{}, fmt.Errorf("segment %q: missing name before bracket", part)
	}

	inner := part[open+1 : len(part)-1]
	switch inner {
	case "", "*":
		seg.wildcard = true
	default:
		idx, err := strconv.Atoi(inner)
		if err != nil || idx < 0 {
			return segment{}, fmt.Errorf("segment %q: invalid index %q", part, inner)
		}
		seg.index = idx
	}
	return seg, nil
}
