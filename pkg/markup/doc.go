// SPDX-License-Identifier: MPL-2.0

// Package markup provides a streaming tag tokenizer for WXML-style markup.
//
// A Parser reports start tags, end tags, and text nodes to a Handler in
// document order without building a tree. Unlike a plain event stream, every
// tag event also carries the byte Span it occupies in the parsed text, so
// callers can inspect structured attributes and rewrite the exact source text
// from a single pass.
//
// The default implementation, Tokenizer, wraps golang.org/x/net/html. Grammar
// and error recovery are that tokenizer's own: markup is tokenized
// best-effort and never validated.
package markup
