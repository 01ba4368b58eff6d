// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for wxsinline.
//
// The root command carries the global flags; inline, watch, and config are
// built from an App that holds the configuration provider, the filesystem,
// and the output streams, so tests can run commands against in-memory trees.
package cmd
