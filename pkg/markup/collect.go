// SPDX-License-Identifier: MPL-2.0

package markup

import "strings"

// ParseResult holds the three event sequences of one parse, each in document
// order.
type ParseResult struct {
	Starts []StartTag
	Ends   []EndTag
	// Texts holds trimmed text content. Whitespace-only text is dropped.
	Texts []string
}

// Collect parses text with p and gathers its events. On error the events
// collected so far are returned alongside it.
func Collect(p Parser, text string) (*ParseResult, error) {
	res := &ParseResult{}
	err := p.Parse(text, Handler{
		OnStart: func(t StartTag) {
			res.Starts = append(res.Starts, t)
		},
		OnEnd: func(t EndTag) {
			res.Ends = append(res.Ends, t)
		},
		OnText: func(s string) {
			if s = strings.TrimSpace(s); s != "" {
				res.Texts = append(res.Texts, s)
			}
		},
	})
	return res, err
}

// StartsNamed returns the start tags called name, in document order.
func (r *ParseResult) StartsNamed(name string) []StartTag {
	var out []StartTag
	for _, t := range r.Starts {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// ClosingFor returns the first end tag with the same name as start that
// begins at or after start's end. Self-closing tags have no closing tag.
//
// Nested tags of the same name are not balanced: the innermost closing tag
// that follows start wins.
func (r *ParseResult) ClosingFor(start StartTag) (EndTag, bool) {
	if start.SelfClosing {
		return EndTag{}, false
	}
	for _, e := range r.Ends {
		if e.Name == start.Name && e.Span.Start >= start.Span.End {
			return e, true
		}
	}
	return EndTag{}, false
}

// Outer returns the span from start through its closing tag, or start's own
// span when it has none.
func (r *ParseResult) Outer(start StartTag) Span {
	if end, ok := r.ClosingFor(start); ok {
		return Span{Start: start.Span.Start, End: end.Span.End}
	}
	return start.Span
}
