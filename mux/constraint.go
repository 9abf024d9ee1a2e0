package mux

import (
	"fmt"
	"regexp"
	"sync"
)

// valueMatcher validates a single path variable value.
// *regexp.Regexp satisfies this interface.
type valueMatcher interface {
	MatchString(string) bool
	String() string
}

// boundedMatcher adds a maximum length on top of a regexp.
type boundedMatcher struct {
	re     *regexp.Regexp
	maxLen int
}

func (m *boundedMatcher) MatchString(s string) bool {
	return len(s) <= m.maxLen && m.re.MatchString(s)
}

func (m *boundedMatcher) String() string {
	return m.re.String()
}

// constraintMacros holds the named constraints usable as ":name:macro"
// in route patterns.
var constraintMacros = func() map[string]valueMatcher {
	raw := map[string]string{
		"uuid":     `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
		"int":      `[0-9]+`,
		"float":    `[0-9]*\.?[0-9]+`,
		"slug":     `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`,
		"alpha":    `[a-zA-Z]+`,
		"alphanum": `[a-zA-Z0-9]+`,
		"date":     `[0-9]{4}-[0-9]{2}-[0-9]{2}`,
		"hex":      `[0-9a-fA-F]+`,
		// RFC 1035/1123: labels 1-63 chars, total up to 253 chars.
		"domain": `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`,
	}

	maxLengths := map[string]int{
		"domain": 253,
	}

	m := make(map[string]valueMatcher, len(raw))
	for name, pattern := range raw {
		re := regexp.MustCompile(fmt.Sprintf("^(?:%s)$", pattern))
		if maxLen, ok := maxLengths[name]; ok {
			m[name] = &boundedMatcher{re: re, maxLen: maxLen}
			continue
		}
		m[name] = re
	}

	return m
}()

// constraintCache keeps compiled raw-regexp constraints. Its size is bounded
// by the number of distinct constraints in registered routes.
var constraintCache sync.Map

// compileConstraint resolves a constraint expression: a macro name or a raw
// regular expression anchored to the whole segment.
func compileConstraint(expr string) (valueMatcher, error) {
	if m, ok := constraintMacros[expr]; ok {
		return m, nil
	}

	if v, ok := constraintCache.Load(expr); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: constraint %q: %v", ErrInvalidPattern, expr, err)
	}

	actual, _ := constraintCache.LoadOrStore(expr, re)

	return actual.(*regexp.Regexp), nil
}
