// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"path/filepath"
	"strings"
)

// ManifestExt is the extension of a document's component manifest.
const ManifestExt = ".json"

// Manifest is the subset of a component manifest discovery cares about.
type Manifest struct {
	Component       bool              `json:"component"`
	UsingComponents map[string]string `json:"usingComponents,omitempty"`
}

// ManifestPath returns the manifest path for a document:
// pages/index/index.wxml -> pages/index/index.json.
func ManifestPath(documentPath string) string {
	return strings.TrimSuffix(documentPath, filepath.Ext(documentPath)) + ManifestExt
}
