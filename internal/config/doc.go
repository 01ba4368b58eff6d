// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/wxsinline/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/wxsinline/config.cue on macOS, %APPDATA%\wxsinline\config.cue
// on Windows), falling back to wxsinline.cue in the working directory. The package covers the
// rewritten tag name, the span-location strategy, the file-reading environment, document
// discovery patterns, output handling, and watch timing.
//
// Configuration files are validated against an embedded CUE schema (config_schema.cue).
package config
