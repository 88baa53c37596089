// Package glob provides composable path selectors over relative paths.
//
// A Selector is a predicate over slash-separated relative paths built from
// doublestar glob patterns and/or exact paths. Selectors compose by set
// difference, which is how content files are separated from patch-artifact
// files: the same base selector is reused with the autopatch directory and
// the snapshot-patch path subtracted.
package glob

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Selector matches relative paths against a set of include patterns and
// exact paths, minus any subtracted selectors. A nil Selector matches
// everything.
type Selector struct {
	patterns []string
	exact    []string
	subtract []*Selector
}

// New creates a selector matching any of the given doublestar patterns.
func New(patterns ...string) *Selector {
	return &Selector{patterns: patterns}
}

// All returns a selector matching every path.
func All() *Selector {
	return New("**")
}

// Single returns a selector matching exactly one path.
func Single(relPath string) *Selector {
	return &Selector{exact: []string{normalize(relPath)}}
}

// Difference returns a selector matching paths in base but not in removed.
// A nil removed selector leaves base unchanged.
func Difference(base, removed *Selector) *Selector {
	if removed == nil {
		return base
	}
	if base == nil {
		base = All()
	}
	out := &Selector{
		patterns: base.patterns,
		exact:    base.exact,
	}
	out.subtract = append(out.subtract, base.subtract...)
	out.subtract = append(out.subtract, removed)
	return out
}

// Matches reports whether the selector matches the given relative path.
func (s *Selector) Matches(relPath string) bool {
	p := normalize(relPath)
	if s == nil {
		return true
	}

	matched := false
	for _, e := range s.exact {
		if p == e {
			matched = true
			break
		}
	}
	if !matched {
		for _, pat := range s.patterns {
			if ok, err := doublestar.Match(pat, p); err == nil && ok {
				matched = true
				break
			}
		}
	}
	if !matched {
		return false
	}

	for _, sub := range s.subtract {
		if sub.Matches(p) {
			return false
		}
	}
	return true
}

// String renders the selector for error messages and verbose output.
func (s *Selector) String() string {
	if s == nil {
		return "**"
	}
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Join(append(append([]string{}, s.patterns...), s.exact...), ", "))
	b.WriteString("]")
	for _, sub := range s.subtract {
		b.WriteString(" - ")
		b.WriteString(sub.String())
	}
	return b.String()
}

// normalize converts a path to clean slash-separated form.
func normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}
