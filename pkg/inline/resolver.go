// SPDX-License-Identifier: MPL-2.0

package inline

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/wxsinline/wxsinline/pkg/markup"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

const (
	// DefaultTag is the inline-script tag rewritten when no other is set.
	DefaultTag = "wxs"
	// SourceAttr names the attribute that points at an external file.
	SourceAttr = "src"
	// ModuleAttr names the attribute that carries the module identifier.
	ModuleAttr = "module"
)

type (
	// Resolver inlines external-reference tags. It holds only immutable
	// configuration and is safe for concurrent use.
	Resolver struct {
		tag      string
		parser   markup.Parser
		files    platform.FileReader
		logger   *log.Logger
		strategy Strategy
		rawTag   *regexp.Regexp
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// WithTag sets the tag name to rewrite. Names are matched lower-cased; an
// empty name keeps the default.
func WithTag(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.tag = strings.ToLower(name)
		}
	}
}

// WithParser replaces the default markup tokenizer.
func WithParser(p markup.Parser) Option {
	return func(r *Resolver) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithFiles sets the capability used to read referenced files.
func WithFiles(files platform.FileReader) Option {
	return func(r *Resolver) {
		if files != nil {
			r.files = files
		}
	}
}

// WithCapabilities reads referenced files through caps.
func WithCapabilities(caps platform.Capabilities) Option {
	return WithFiles(caps)
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStrategy selects how replaceable tag text is located.
func WithStrategy(s Strategy) Option {
	return func(r *Resolver) {
		if s != "" {
			r.strategy = s
		}
	}
}

// New returns a Resolver. Without options it rewrites <wxs> tags found by
// markup.Tokenizer, reads files from the host filesystem, and logs nothing.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		tag:      DefaultTag,
		parser:   markup.NewTokenizer(),
		files:    platform.NewHost(),
		logger:   log.New(io.Discard),
		strategy: StrategySpans,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategy == StrategyRawScan {
		r.rawTag = rawTagPattern(r.tag)
	}
	return r
}

// Inline rewrites a single document with default settings and the given
// file capability, returning only the text.
func Inline(documentText, documentPath string, files platform.FileReader) string {
	return New(WithFiles(files)).Inline(documentText, documentPath).Text
}

// Tag returns the tag name this resolver rewrites.
func (r *Resolver) Tag() string {
	return r.tag
}

// Strategy returns the span-location strategy in use.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Inline replaces every external-reference tag in documentText with an
// inline tag holding the referenced file's content. Each src is resolved
// against the directory of documentPath.
//
// Inline never panics outward. When the document cannot be tokenized, or the
// raw-scan strategy loses step with the parser, the input is returned
// unchanged with Result.Err set.
func (r *Resolver) Inline(documentText, documentPath string) (res Result) {
	res = Result{Text: documentText, Status: StatusUnchanged}

	if !strings.Contains(documentText, "<"+r.tag) {
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res = r.unchanged(documentText, documentPath, fmt.Errorf("%w: %v", ErrParserPanic, p))
		}
	}()

	parsed, err := markup.Collect(r.parser, documentText)
	if err != nil {
		return r.unchanged(documentText, documentPath, fmt.Errorf("%w: %w", ErrParse, err))
	}

	if r.strategy == StrategyRawScan {
		return r.inlineRawScan(documentText, documentPath, parsed)
	}
	return r.inlineSpans(documentText, documentPath, parsed)
}

// inlineSpans rewrites using the spans the parser recorded for each tag.
// A tag's replaceable text runs from its start tag through the first
// following closing tag of the same name.
func (r *Resolver) inlineSpans(text, documentPath string, parsed *markup.ParseResult) Result {
	var (
		out  strings.Builder
		refs []Reference
		last int
	)

	for _, start := range parsed.Starts {
		src, ok := r.externalSource(start)
		if !ok {
			continue
		}

		span := parsed.Outer(start)
		ref := Reference{Source: src, Span: span, Raw: text[span.Start:span.End]}

		if span.Start < last {
			ref.Skipped = true
			r.logger.Warn("external tag nested in a replaced tag, leaving it",
				"document", documentPath, "src", src)
			refs = append(refs, ref)
			continue
		}

		replacement, ok := r.resolve(&ref, start, documentPath)
		refs = append(refs, ref)
		if !ok {
			continue
		}

		out.WriteString(text[last:span.Start])
		out.WriteString(replacement)
		last = span.End
	}

	if last == 0 {
		return Result{Text: text, Status: StatusUnchanged, References: refs}
	}
	out.WriteString(text[last:])

	return Result{Text: out.String(), Status: StatusRewritten, References: refs}
}

// inlineRawScan rewrites by pairing the i-th qualifying start tag with the
// i-th raw regex match and replacing the first remaining occurrence of that
// match's text.
func (r *Resolver) inlineRawScan(text, documentPath string, parsed *markup.ParseResult) Result {
	matches := r.rawTag.FindAllStringIndex(text, -1)

	qualifying := 0
	for _, start := range parsed.Starts {
		if _, ok := r.externalSource(start); ok {
			qualifying++
		}
	}
	if qualifying != len(matches) {
		return r.unchanged(text, documentPath,
			fmt.Errorf("%w: %d parsed, %d scanned", ErrDesync, qualifying, len(matches)))
	}

	var refs []Reference
	out := text
	changed := false
	i := 0

	for _, start := range parsed.Starts {
		src, ok := r.externalSource(start)
		if !ok {
			continue
		}

		m := matches[i]
		i++

		ref := Reference{
			Source: src,
			Span:   markup.Span{Start: m[0], End: m[1]},
			Raw:    text[m[0]:m[1]],
		}
		replacement, ok := r.resolve(&ref, start, documentPath)
		refs = append(refs, ref)
		if !ok {
			continue
		}

		out = strings.Replace(out, ref.Raw, replacement, 1)
		changed = true
	}

	if !changed {
		return Result{Text: text, Status: StatusUnchanged, References: refs}
	}
	return Result{Text: out, Status: StatusRewritten, References: refs}
}

// externalSource returns the src of start when it is a target tag that
// references an external file. Tags without a non-empty src are already
// inline.
func (r *Resolver) externalSource(start markup.StartTag) (string, bool) {
	if start.Name != r.tag {
		return "", false
	}
	src, ok := start.Attr(SourceAttr)
	if !ok || src == "" {
		return "", false
	}
	return src, true
}

// resolve fills in ref's module and path, reads the referenced file, and
// returns the inline replacement. It reports false when the tag must be left
// as-is.
func (r *Resolver) resolve(ref *Reference, start markup.StartTag, documentPath string) (string, bool) {
	module, ok := start.Attr(ModuleAttr)
	if !ok {
		ref.Skipped = true
		r.logger.Warn("external tag has no module attribute, leaving it",
			"document", documentPath, "tag", r.tag, "src", ref.Source)
		return "", false
	}
	ref.Module = module
	ref.Path = filepath.Join(filepath.Dir(documentPath), ref.Source)

	content, ok := r.files.ReadFile(ref.Path)
	if !ok {
		ref.Missing = true
		r.logger.Warn("referenced file unreadable, inlining empty body",
			"document", documentPath, "module", module, "src", ref.Source, "path", ref.Path)
	} else {
		r.logger.Debug("inlined reference",
			"document", documentPath, "module", module, "path", ref.Path, "bytes", len(content))
	}

	return fmt.Sprintf("<%s %s=\"%s\">%s</%s>", r.tag, ModuleAttr, module, content, r.tag), true
}

// unchanged logs why a document was left alone and returns it untouched.
func (r *Resolver) unchanged(text, documentPath string, err error) Result {
	r.logger.Warn("leaving document unchanged", "document", documentPath, "err", err)
	return Result{Text: text, Status: StatusUnchanged, Err: err}
}
