// SPDX-License-Identifier: MPL-2.0

// Package discovery finds the markup documents a batch run rewrites.
//
// Paths named on the command line are taken as-is when they are files. Directories are
// walked and every file whose path (relative to the directory) matches one of the
// doublestar patterns, and none of the ignore patterns, becomes a Document. When
// ComponentsOnly is set a document is kept only if the JSON manifest next to it
// (index.wxml -> index.json) declares "component": true.
//
// File organization:
//   - discovery.go: Discovery, Document, and the walk
//   - matcher.go: glob matching shared with watch mode
//   - manifest.go: component manifests
//   - diagnostic.go: non-fatal findings returned to the CLI
package discovery
