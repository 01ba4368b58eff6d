// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides which relative paths are documents.
type Matcher struct {
	patterns []string
	ignore   []string
}

// NewMatcher validates the globs and returns a Matcher. At least one pattern
// is required.
func NewMatcher(patterns, ignore []string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("discovery: %w", ErrNoPatterns)
	}
	if err := validatePatterns(patterns, "document"); err != nil {
		return nil, err
	}
	if err := validatePatterns(ignore, "ignore"); err != nil {
		return nil, err
	}
	return &Matcher{patterns: patterns, ignore: ignore}, nil
}

// Patterns returns the document globs.
func (m *Matcher) Patterns() []string { return m.patterns }

// Ignore returns the ignore globs.
func (m *Matcher) Ignore() []string { return m.ignore }

// Match reports whether rel is a document path that is not ignored.
func (m *Matcher) Match(rel string) bool {
	return !m.Ignored(rel) && matchAny(m.patterns, rel)
}

// Ignored reports whether rel matches an ignore glob.
func (m *Matcher) Ignored(rel string) bool {
	return matchAny(m.ignore, rel)
}

// IgnoredDir reports whether a directory should not be descended into.
func (m *Matcher) IgnoredDir(rel string) bool {
	return m.Ignored(rel) || m.Ignored(rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// validatePatterns checks that every pattern in the slice is a valid doublestar
// glob. The label (e.g., "document" or "ignore") is used in error messages.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("discovery: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
