package mux

import (
	"cmp"
	"fmt"
	"strings"
)

// segment rank used for precedence: lower ranks are more specific.
const (
	rankLiteral = iota
	rankConstrained
	rankVariable
)

// segment is one "/"-separated element of a route pattern.
type segment struct {
	literal    string
	name       string
	constraint string
	matcher    valueMatcher
}

func (s segment) isVariable() bool {
	return s.name != ""
}

func (s segment) rank() int {
	switch {
	case !s.isVariable():
		return rankLiteral
	case s.matcher != nil:
		return rankConstrained
	default:
		return rankVariable
	}
}

func (s segment) match(value string) bool {
	if !s.isVariable() {
		return s.literal == value
	}
	if value == "" {
		return false
	}
	return s.matcher == nil || s.matcher.MatchString(value)
}

// pattern is a parsed route pattern such as "/users/:id" or "/files/:id:uuid".
type pattern struct {
	raw      string
	segments []segment
	vars     int
}

// splitPath splits a path into segments, ignoring leading and trailing
// slashes. The root path has no segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// parsePattern parses a route pattern. A segment starting with ":" binds a
// path variable; an optional second ":" introduces a constraint, either a
// macro name (int, uuid, slug, ...) or a regular expression.
func parsePattern(raw string) (*pattern, error) {
	parts := splitPath(raw)
	p := &pattern{
		raw:      "/" + strings.Join(parts, "/"),
		segments: make([]segment, 0, len(parts)),
	}

	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		if !strings.HasPrefix(part, ":") {
			p.segments = append(p.segments, segment{literal: part})
			continue
		}

		name, constraint, _ := strings.Cut(part[1:], ":")
		if name == "" {
			return nil, fmt.Errorf("%w: empty variable name in %q", ErrInvalidPattern, raw)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicated variable %q in %q", ErrInvalidPattern, name, raw)
		}
		seen[name] = struct{}{}

		seg := segment{name: name, constraint: constraint}
		if constraint != "" {
			m, err := compileConstraint(constraint)
			if err != nil {
				return nil, err
			}
			seg.matcher = m
		}

		p.segments = append(p.segments, seg)
		p.vars++
	}

	return p, nil
}

// match matches the pattern against an actual request path and returns the
// bound variables.
func (p *pattern) match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	if len(parts) != len(p.segments) {
		return nil, false
	}

	var vars map[string]string
	if p.vars > 0 {
		vars = make(map[string]string, p.vars)
	}

	for i, seg := range p.segments {
		if !seg.match(parts[i]) {
			return nil, false
		}
		if seg.isVariable() {
			vars[seg.name] = parts[i]
		}
	}

	return vars, true
}

// shape returns the structural identity of the pattern: variable names are
// erased, constraints are kept. Two patterns with the same shape match
// exactly the same set of paths.
func (p *pattern) shape() string {
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.isVariable() {
			b.WriteByte(':')
			b.WriteString(seg.constraint)
			continue
		}
		b.WriteString(seg.literal)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// comparePatterns orders patterns by specificity. At the first position where
// segment kinds differ, literal beats constrained variable beats plain
// variable. Patterns of different arity never match the same path; they are
// ordered by length only to keep the ordering total.
func comparePatterns(a, b *pattern) int {
	if c := cmp.Compare(len(a.segments), len(b.segments)); c != 0 {
		return c
	}
	for i := range a.segments {
		if c := cmp.Compare(a.segments[i].rank(), b.segments[i].rank()); c != 0 {
			return c
		}
	}
	return 0
}

// MatchPath matches a route pattern against an actual path. It returns the
// extracted path variables and true on a match.
//
// Matching is fixed-arity: both strings are split on "/" and must have the
// same number of segments. Segments starting with ":" bind variables, all
// other segments must be equal.
//
//	vars, ok := mux.MatchPath("/users/:id", "/users/42") // {"id": "42"}, true
func MatchPath(routePattern, path string) (map[string]string, bool) {
	p, err := parsePattern(routePattern)
	if err != nil {
		return nil, false
	}
	return p.match(path)
}
