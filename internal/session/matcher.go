package session

import (
	"fmt"
	"path"
)

// Matcher is a compiled filename filter expression.
// The empty expression is valid and matches nothing.
type Matcher struct {
	expr string
}

// CompileMatcher validates expr as a glob pattern and returns a matcher
// for it. Returns an error for malformed patterns.
func CompileMatcher(expr string) (*Matcher, error) {
	if _, err := path.Match(expr, "probe"); err != nil {
		return nil, fmt.Errorf("bad filter pattern %q: %w", expr, err)
	}

	return &Matcher{expr: expr}, nil
}

// MustCompileMatcher compiles expr and panics on error.
// Only for expressions known valid at compile time (like the empty one).
func MustCompileMatcher(expr string) *Matcher {
	m, err := CompileMatcher(expr)
	if err != nil {
		panic(err)
	}

	return m
}

// Expr returns the raw expression the matcher was compiled from.
func (m *Matcher) Expr() string {
	if m == nil {
		return ""
	}

	return m.expr
}

// Empty reports whether the matcher matches nothing.
func (m *Matcher) Empty() bool {
	return m == nil || m.expr == ""
}

// Matches reports whether name matches the filter expression.
func (m *Matcher) Matches(name string) bool {
	if m.Empty() {
		return false
	}

	ok, err := path.Match(m.expr, name)

	return err == nil && ok
}
