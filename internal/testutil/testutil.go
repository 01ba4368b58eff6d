// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"maps"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"
)

// MustWriteFiles writes every path -> content entry of files to fs, creating
// parent directories. Paths are written in sorted order.
func MustWriteFiles(t testing.TB, fs afero.Fs, files map[string]string) {
	t.Helper()
	for _, path := range slices.Sorted(maps.Keys(files)) {
		MustWriteFile(t, fs, path, files[path])
	}
}

// MustWriteFile writes content to path on fs, creating parent directories.
func MustWriteFile(t testing.TB, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustReadFile returns the content of path on fs.
func MustReadFile(t testing.TB, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// MemFs returns an in-memory filesystem populated with files.
func MemFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	MustWriteFiles(t, fs, files)
	return fs
}
