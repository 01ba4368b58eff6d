// SPDX-License-Identifier: MPL-2.0

// Package platform provides the explicit capability set that document
// rewriting runs against.
//
// Two environments exist. EnvHost reads from the host filesystem. EnvFileMap
// reads from an in-memory file map, typically loaded from a JSON bundle that
// maps paths to file contents, for sandboxes that have no filesystem of their
// own. The environment is chosen once at startup and the resulting
// Capabilities value is passed to every component that needs file access;
// nothing here is process-wide state.
package platform
