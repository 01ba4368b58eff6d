// SPDX-License-Identifier: MPL-2.0

package inline

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// StrategySpans replaces the exact byte span the tokenizer recorded for
	// each tag.
	StrategySpans Strategy = "spans"
	// StrategyRawScan locates tags with an independent regular-expression
	// scan of the raw text and pairs the i-th match with the i-th
	// qualifying parsed tag. Kept for output compatibility with tooling that
	// relies on that pairing.
	StrategyRawScan Strategy = "raw-scan"
)

// ErrInvalidStrategy is returned when a Strategy value is not recognized.
var ErrInvalidStrategy = errors.New("invalid strategy")

type (
	// Strategy selects how the replaceable text of a tag is located.
	Strategy string

	// InvalidStrategyError is returned when a Strategy value is not
	// recognized. It wraps ErrInvalidStrategy for errors.Is() compatibility.
	InvalidStrategyError struct {
		Value Strategy
	}
)

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid strategy %q (valid: %s, %s)", e.Value, StrategySpans, StrategyRawScan)
}

// Unwrap returns ErrInvalidStrategy for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// ParseStrategy converts a configuration or flag value into a Strategy. The
// empty string selects StrategySpans.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategySpans:
		return StrategySpans, nil
	case StrategyRawScan:
		return StrategyRawScan, nil
	default:
		return "", &InvalidStrategyError{Value: Strategy(s)}
	}
}

// rawTagPattern matches one complete external-reference tag: either the
// self-closed form or an open tag followed by a word/space-only body and its
// closing tag. The src value must be non-empty and made of word characters,
// spaces, dots, and slashes.
func rawTagPattern(tag string) *regexp.Regexp {
	q := regexp.QuoteMeta(tag)
	return regexp.MustCompile(
		`<` + q + `(?:\s|\w|=|"|')*?` +
			`src\s*=\s*["'](?:\s|\w|\.|/)+["']` +
			`(?:\s|\w|=|"|')*?` +
			`(?:/>|>(?:\w|\s)*</` + q + `>)`,
	)
}
