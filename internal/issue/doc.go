// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved, and remediation
// hints. An error may also point at a catalog entry: Markdown guidance rendered with
// glamour when the CLI reports the failure.
package issue
