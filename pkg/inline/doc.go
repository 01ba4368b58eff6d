// SPDX-License-Identifier: MPL-2.0

// Package inline rewrites external-reference script tags into inline tags.
//
// A WXML template may pull a WXS module from a separate file:
//
//	<wxs module="fmt" src="./fmt.wxs" />
//
// Resolver.Inline replaces every such tag with an equivalent inline tag that
// keeps only the module name and carries the referenced file's content as its
// body:
//
//	<wxs module="fmt">...contents of fmt.wxs...</wxs>
//
// Rewriting is best-effort and never fails outward. A document that cannot be
// tokenized is returned untouched, an unreadable reference becomes an empty
// inline body, and a tag without a module name is left as it is. Result
// reports which of these happened.
package inline
