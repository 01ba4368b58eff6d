// SPDX-License-Identifier: MPL-2.0

// Package inlining runs the inline-script resolver over a batch of discovered
// documents. It decouples CLI-layer orchestration from document I/O: reading
// sources, writing results in place or under an output directory, and
// building a Report the CLI renders or encodes.
package inlining
