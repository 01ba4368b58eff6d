// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fail-fast helpers for building and inspecting
// document trees in tests, on an in-memory or the host filesystem.
package testutil
