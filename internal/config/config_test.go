// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/pkg/inline"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func isolatedOptions(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if valid, errs := cfg.IsValid(); !valid {
		t.Fatalf("DefaultConfig() invalid: %v", errs)
	}
	if cfg.Tag != "wxs" {
		t.Errorf("Tag = %q, want wxs", cfg.Tag)
	}
	if cfg.Strategy != inline.StrategySpans {
		t.Errorf("Strategy = %q, want spans", cfg.Strategy)
	}
	if cfg.Environment != platform.EnvHost {
		t.Errorf("Environment = %q, want host", cfg.Environment)
	}
	if cfg.Output.Mode != OutputStdout || cfg.Output.Format != FormatText {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %s, want 500ms", cfg.Watch.Debounce)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := NewProvider().LoadWithSource(context.Background(), isolatedOptions(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("source = %q, want none", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UserConfigFile(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	cfgPath := filepath.Join(opts.ConfigDirPath, "config.cue")
	writeFile(t, cfgPath, `
strategy: "raw-scan"
patterns: ["pages/**/*.wxml", "components/**/*.wxml"]
output: {
	mode: "dir"
	dir:  "dist"
}
watch: debounce: "250ms"
`)

	cfg, path, err := NewProvider().LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != cfgPath {
		t.Errorf("source = %q, want %q", path, cfgPath)
	}
	if cfg.Strategy != inline.StrategyRawScan {
		t.Errorf("Strategy = %q", cfg.Strategy)
	}
	if diff := cmp.Diff([]string{"pages/**/*.wxml", "components/**/*.wxml"}, cfg.Patterns); diff != "" {
		t.Errorf("Patterns mismatch (-want +got):\n%s", diff)
	}
	if cfg.Output.Mode != OutputDir || cfg.Output.Dir != "dist" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Output.Format = %q, want default text", cfg.Output.Format)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %s", cfg.Watch.Debounce)
	}
}

func TestLoad_WorkDirFallback(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	local := filepath.Join(opts.WorkDir, LocalConfigFileName)
	writeFile(t, local, `tag: "sjs"`)

	cfg, path, err := NewProvider().LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != local || cfg.Tag != "sjs" {
		t.Errorf("Load() = tag %q from %q", cfg.Tag, path)
	}
}

func TestLoad_UserConfigWinsOverWorkDir(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	writeFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `tag: "wxs"`)
	writeFile(t, filepath.Join(opts.WorkDir, LocalConfigFileName), `tag: "sjs"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tag != "wxs" {
		t.Errorf("Tag = %q, want the user config value", cfg.Tag)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown strategy", `strategy: "regex"`, "strategy"},
		{"unknown field", `colour: "red"`, "colour"},
		{"bad output mode", `output: mode: "clipboard"`, "output.mode"},
		{"bad debounce", `watch: debounce: "soon"`, "watch.debounce"},
		{"syntax error", `tag: "wxs`, "config.cue"},
		{"dir mode without dir", `output: mode: "dir"`, "output.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolatedOptions(t)
			writeFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), tt.content)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Errorf("error should be *issue.ActionableError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom.cue")
	writeFile(t, explicit, `log_level: "debug"`)

	cfg, path, err := NewProvider().LoadWithSource(context.Background(), LoadOptions{ConfigFilePath: explicit})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != explicit || cfg.LogLevel != LogLevelDebug {
		t.Errorf("Load() = %q from %q", cfg.LogLevel, path)
	}

	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider().Load(ctx, isolatedOptions(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("WXSINLINE_OUTPUT_FORMAT", "json")
	t.Setenv("WXSINLINE_STRATEGY", "raw-scan")

	cfg, err := NewProvider().Load(context.Background(), isolatedOptions(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != FormatJSON || cfg.Strategy != inline.StrategyRawScan {
		t.Errorf("Load() = format %q strategy %q", cfg.Output.Format, cfg.Strategy)
	}

	t.Setenv("WXSINLINE_LOG_LEVEL", "loud")
	if _, err := NewProvider().Load(context.Background(), isolatedOptions(t)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() with a bad override error = %v, want ErrInvalidConfig", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Tag = "sjs"
	want.Strategy = inline.StrategyRawScan
	want.Environment = platform.EnvFileMap
	want.FileMap = "bundle.json"
	want.ComponentsOnly = true
	want.Output = OutputConfig{Mode: OutputDir, Dir: "out dir", Format: FormatYAML}
	want.Watch = WatchConfig{Debounce: 1500 * time.Millisecond, ClearScreen: true}
	want.LogLevel = LogLevelWarn
	want.UI.Verbose = true

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.cue")
	if err := SaveTo(want, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	// An existing file is never overwritten.
	writeFile(t, path, `tag: "sjs"`)
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() second call error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `tag: "sjs"` {
		t.Errorf("existing config overwritten:\n%s", data)
	}

	cfg := DefaultConfig()
	cfg.LogLevel = LogLevelError
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LogLevel != LogLevelError {
		t.Errorf("LogLevel = %q after Save", loaded.LogLevel)
	}
}

func TestFormatCUEPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"tag"}, "tag"},
		{[]string{"output", "mode"}, "output.mode"},
		{[]string{"patterns", "2"}, "patterns[2]"},
	}
	for _, tt := range tests {
		if got := formatCUEPath(tt.path); got != tt.want {
			t.Errorf("formatCUEPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
