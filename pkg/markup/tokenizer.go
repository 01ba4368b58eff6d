// SPDX-License-Identifier: MPL-2.0

package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Tokenizer is the default Parser. It drives an x/net/html tokenizer and
// tracks the cumulative length of each raw token to recover byte offsets,
// which the underlying tokenizer does not expose.
//
// The zero value is ready to use and safe for concurrent use.
type Tokenizer struct{}

// NewTokenizer returns the default tag-stream parser.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Parse tokenizes text and reports every start tag, end tag, and text node to
// h in document order. Comments and doctypes are consumed but not reported.
// Text is passed through untrimmed.
func (t *Tokenizer) Parse(text string, h Handler) error {
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0

	for {
		tt := z.Next()
		// Raw must be measured before TagName/Text, which may rewrite the
		// shared buffer in place.
		n := len(z.Raw())
		span := Span{Start: offset, End: offset + n}
		offset += n

		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("markup: tokenize at byte %d: %w", span.Start, err)

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := StartTag{
				Name:        string(name),
				SelfClosing: tt == html.SelfClosingTagToken,
				Span:        span,
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				tag.Attrs = append(tag.Attrs, Attr{Name: string(key), Value: string(val)})
			}
			h.start(tag)

		case html.EndTagToken:
			name, _ := z.TagName()
			h.end(EndTag{Name: string(name), Span: span})

		case html.TextToken:
			h.text(string(z.Text()))

		case html.CommentToken, html.DoctypeToken:
		}
	}
}
