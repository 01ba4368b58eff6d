// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// EnvHost reads files from the host filesystem.
	EnvHost Env = "host"
	// EnvFileMap reads files from an in-memory path-to-content map.
	EnvFileMap Env = "file-map"

	// FileMapEnvVar names the environment variable that, when set to the
	// path of a JSON file map, selects EnvFileMap during detection.
	FileMapEnvVar = "WXSINLINE_FILE_MAP"
)

var (
	// ErrInvalidEnv is returned when an Env value is not recognized.
	ErrInvalidEnv = errors.New("invalid environment")
	// ErrNoFilesystem is returned by operations on a zero Capabilities.
	ErrNoFilesystem = errors.New("no filesystem configured")
)

type (
	// Env identifies the environment a Capabilities value reads from.
	Env string

	// InvalidEnvError is returned when an Env value is not recognized.
	// It wraps ErrInvalidEnv for errors.Is() compatibility.
	InvalidEnvError struct {
		Value Env
	}

	// FileReader is the read-text-file capability. ReadFile never fails
	// outward: an unreadable path reports ok == false.
	FileReader interface {
		ReadFile(path string) (content string, ok bool)
	}

	// Capabilities bundles the file operations available to rewriting. The
	// zero value has no filesystem: every read reports failure.
	Capabilities struct {
		env Env
		fs  afero.Fs
	}
)

// Error implements the error interface.
func (e *InvalidEnvError) Error() string {
	return fmt.Sprintf("invalid environment %q (valid: %s, %s)", e.Value, EnvHost, EnvFileMap)
}

// Unwrap returns ErrInvalidEnv for errors.Is() compatibility.
func (e *InvalidEnvError) Unwrap() error { return ErrInvalidEnv }

// ParseEnv converts a configuration or flag value into an Env. The empty
// string selects EnvHost.
func ParseEnv(s string) (Env, error) {
	switch Env(s) {
	case "", EnvHost:
		return EnvHost, nil
	case EnvFileMap:
		return EnvFileMap, nil
	default:
		return "", &InvalidEnvError{Value: Env(s)}
	}
}

// NewHost returns capabilities backed by the host filesystem.
func NewHost() Capabilities {
	return Capabilities{env: EnvHost, fs: afero.NewOsFs()}
}

// NewFileMap returns capabilities backed by an in-memory copy of files,
// keyed by path.
func NewFileMap(files map[string]string) (Capabilities, error) {
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return Capabilities{}, fmt.Errorf("file map: create parent of %s: %w", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			return Capabilities{}, fmt.Errorf("file map: store %s: %w", path, err)
		}
	}
	return Capabilities{env: EnvFileMap, fs: fs}, nil
}

// FromFs wraps an arbitrary afero filesystem. It is mainly useful for tests
// and for callers that already hold a filesystem abstraction.
func FromFs(env Env, fs afero.Fs) Capabilities {
	return Capabilities{env: env, fs: fs}
}

// LoadFileMap decodes a JSON object of path/content pairs from r and returns
// EnvFileMap capabilities serving it.
func LoadFileMap(r io.Reader) (Capabilities, error) {
	var files map[string]string
	if err := json.NewDecoder(r).Decode(&files); err != nil {
		return Capabilities{}, fmt.Errorf("file map: decode: %w", err)
	}
	return NewFileMap(files)
}

// Open builds the capabilities for env. EnvFileMap loads the bundle at
// fileMapPath from the host filesystem.
func Open(env Env, fileMapPath string) (Capabilities, error) {
	switch env {
	case "", EnvHost:
		return NewHost(), nil
	case EnvFileMap:
		if fileMapPath == "" {
			return Capabilities{}, fmt.Errorf("file map: no bundle path given for %s environment", EnvFileMap)
		}
		f, err := os.Open(fileMapPath)
		if err != nil {
			return Capabilities{}, fmt.Errorf("file map: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only handle
		return LoadFileMap(f)
	default:
		return Capabilities{}, &InvalidEnvError{Value: env}
	}
}

// Detect chooses the environment from the process environment: EnvFileMap
// when FileMapEnvVar names a bundle, EnvHost otherwise. The bundle path is
// returned alongside. Accepting lookupEnv keeps detection testable without
// touching the real environment.
func Detect(lookupEnv func(string) string) (Env, string) {
	if p := lookupEnv(FileMapEnvVar); p != "" {
		return EnvFileMap, p
	}
	return EnvHost, ""
}

// Env reports which environment these capabilities read from.
func (c Capabilities) Env() Env {
	return c.env
}

// Fs exposes the underlying filesystem, or nil for the zero value.
func (c Capabilities) Fs() afero.Fs {
	return c.fs
}

// ReadFile returns the content of path. Any failure, including a missing
// filesystem, reports ok == false.
func (c Capabilities) ReadFile(path string) (string, bool) {
	if c.fs == nil {
		return "", false
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ReadJSON reads path and decodes its JSON content into v.
func (c Capabilities) ReadJSON(path string, v any) error {
	if c.fs == nil {
		return ErrNoFilesystem
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func (c Capabilities) Exists(path string) bool {
	if c.fs == nil {
		return false
	}
	info, err := c.fs.Stat(path)
	return err == nil && !info.IsDir()
}
