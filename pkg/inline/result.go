// SPDX-License-Identifier: MPL-2.0

package inline

import (
	"errors"

	"github.com/wxsinline/wxsinline/pkg/markup"
)

const (
	// StatusUnchanged means the returned text is the input text.
	StatusUnchanged Status = iota
	// StatusRewritten means at least one reference was inlined.
	StatusRewritten
)

var (
	// ErrParse is attached to a Result when the tag-stream parser failed.
	ErrParse = errors.New("parse markup")
	// ErrParserPanic is attached to a Result when the parser panicked.
	ErrParserPanic = errors.New("parser panicked")
	// ErrDesync is attached to a Result when the raw-scan strategy found a
	// different number of raw tags than the parser reported.
	ErrDesync = errors.New("raw tag scan out of step with parsed tags")
)

type (
	// Status tells a rewritten document from one left alone.
	Status int

	// Reference is one external-reference tag found in a document.
	Reference struct {
		// Module is the value of the module attribute.
		Module string `json:"module" yaml:"module" toml:"module"`
		// Source is the non-empty src attribute value as written.
		Source string `json:"src" yaml:"src" toml:"src"`
		// Path is Source resolved against the document's directory. Empty
		// when the reference was skipped.
		Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
		// Span locates Raw in the original document.
		Span markup.Span `json:"-" yaml:"-" toml:"-"`
		// Raw is the original text of the tag that was (or would have been)
		// replaced.
		Raw string `json:"-" yaml:"-" toml:"-"`
		// Missing is set when the referenced file could not be read and an
		// empty body was inlined instead.
		Missing bool `json:"missing,omitempty" yaml:"missing,omitempty" toml:"missing,omitempty"`
		// Skipped is set when the tag was left as-is: it had no module
		// attribute, or it sat inside a tag that was already replaced.
		Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	}

	// Result is the outcome of one Inline call.
	Result struct {
		// Text is the rewritten document, or the input when Status is
		// StatusUnchanged.
		Text   string
		Status Status
		// References lists the external-reference tags in document order.
		References []Reference
		// Err records why the document was left untouched, if it was. It is
		// informational only.
		Err error
	}
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusRewritten:
		return "rewritten"
	default:
		return "unknown"
	}
}

// Changed reports whether the document was rewritten.
func (r Result) Changed() bool {
	return r.Status == StatusRewritten
}

// Missing returns the references whose files could not be read.
func (r Result) Missing() []Reference {
	var out []Reference
	for _, ref := range r.References {
		if ref.Missing {
			out = append(out, ref)
		}
	}
	return out
}

// Inlined returns the number of references that were replaced.
func (r Result) Inlined() int {
	n := 0
	for _, ref := range r.References {
		if !ref.Skipped {
			n++
		}
	}
	return n
}
