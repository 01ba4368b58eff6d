// SPDX-License-Identifier: MPL-2.0

package markup

const (
	// EventStart is reported for opening and self-closing tags.
	EventStart EventKind = iota + 1
	// EventEnd is reported for closing tags.
	EventEnd
	// EventText is reported for text between tags.
	EventText
)

type (
	// EventKind identifies the kind of a tag-stream event.
	EventKind int

	// Span is a half-open byte range [Start, End) into the parsed text.
	Span struct {
		Start int
		End   int
	}

	// Attr is a single attribute of a start tag. Values are unescaped.
	Attr struct {
		Name  string
		Value string
	}

	// StartTag is an opening tag event.
	StartTag struct {
		// Name is the lower-cased tag name.
		Name string
		// Attrs holds the attributes in source order. Names are not
		// guaranteed to be unique.
		Attrs []Attr
		// SelfClosing is true for the "<tag ... />" form.
		SelfClosing bool
		// Span covers the tag from '<' through '>'.
		Span Span
	}

	// EndTag is a closing tag event.
	EndTag struct {
		Name string
		Span Span
	}

	// Handler receives tag-stream events. Nil callbacks are skipped.
	Handler struct {
		OnStart func(StartTag)
		OnEnd   func(EndTag)
		OnText  func(text string)
	}

	// Parser tokenizes markup text and reports events to a Handler in
	// document order.
	Parser interface {
		Parse(text string, h Handler) error
	}

	// ParserFunc adapts an ordinary function to the Parser interface.
	ParserFunc func(text string, h Handler) error
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Attr returns the value of the first attribute called name.
func (t StartTag) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Parse calls f(text, h).
func (f ParserFunc) Parse(text string, h Handler) error {
	return f(text, h)
}

func (h Handler) start(t StartTag) {
	if h.OnStart != nil {
		h.OnStart(t)
	}
}

func (h Handler) end(t EndTag) {
	if h.OnEnd != nil {
		h.OnEnd(t)
	}
}

func (h Handler) text(s string) {
	if h.OnText != nil {
		h.OnText(s)
	}
}
