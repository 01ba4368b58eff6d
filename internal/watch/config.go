// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar globs, relative to BaseDir, selecting the
		// files whose changes are reported. Empty reports every non-ignored
		// file.
		Patterns []string

		// Ignore lists extra globs that never report. They are merged with
		// the built-in ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative means defaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback. Callers decide whether Stdout is a terminal.
		ClearScreen bool

		// BaseDir is the watched root. Empty means the working directory.
		BaseDir string

		// OnChange receives the coalesced changes of one debounce window,
		// sorted by path. nil is a no-op.
		OnChange func(ctx context.Context, changes []Change) error

		// Stdout receives the clear-screen sequence. nil means os.Stdout.
		Stdout io.Writer
		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// InvalidWatchConfigError lists every problem found by Config.Validate.
	// It wraps ErrInvalidWatchConfig for errors.Is() compatibility.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid watch config (%d errors): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate checks every pattern and the base directory, collecting all
// problems into one InvalidWatchConfigError.
func (c Config) Validate() error {
	var errs []error
	errs = append(errs, patternErrors(c.Patterns, "watch")...)
	errs = append(errs, patternErrors(c.Ignore, "ignore")...)
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base directory is blank"))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

func patternErrors(patterns []string, label string) []error {
	var errs []error
	for _, pat := range patterns {
		if pat == "" {
			errs = append(errs, fmt.Errorf("empty %s pattern", label))
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid %s pattern %q", label, pat))
		}
	}
	return errs
}
