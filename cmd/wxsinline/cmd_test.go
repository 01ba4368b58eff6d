// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/testutil"
)

const (
	cardDoc = `<view><wxs module="fmt" src="./fmt.wxs"/></view>`
	cardOut = `<view><wxs module="fmt">FMT</wxs></view>`
)

var projectFiles = map[string]string{
	"/proj/components/card/card.wxml": cardDoc,
	"/proj/components/card/fmt.wxs":   "FMT",
	"/proj/pages/index/index.wxml":    `<view>{{title}}</view>`,
}

// fakeConfigProvider returns a fresh copy of cfg (defaults when nil) on
// every load, or err.
type fakeConfigProvider struct {
	cfg    *config.Config
	source string
	err    error
}

func (p *fakeConfigProvider) LoadWithSource(context.Context, config.LoadOptions) (*config.Config, string, error) {
	if p.err != nil {
		return nil, "", p.err
	}
	if p.cfg == nil {
		return config.DefaultConfig(), p.source, nil
	}
	cfg := *p.cfg
	return &cfg, p.source, nil
}

type harness struct {
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	app    *App
}

func newHarness(t *testing.T, files, env map[string]string, provider ConfigProvider) *harness {
	t.Helper()

	if provider == nil {
		provider = &fakeConfigProvider{}
	}
	h := &harness{
		fs:     testutil.MemFs(t, files),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	app, err := NewApp(Dependencies{
		Config:  provider,
		Fs:      h.fs,
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		Getenv:  func(key string) string { return env[key] },
		WorkDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	h.app = app
	return h
}

func (h *harness) run(args ...string) error {
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(context.Background())
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	return testutil.MustReadFile(t, h.fs, path)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func TestNewApp_Defaults(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if app.Config == nil || app.fs == nil || app.stdout == nil || app.stderr == nil || app.getenv == nil {
		t.Errorf("NewApp() left nil dependencies: %+v", app)
	}
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, nil, nil)
	root := NewRootCommand(h.app)

	for _, name := range []string{"inline", "watch", "config", "completion"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("root.Find(%q) = %v, %v", name, c, err)
		}
	}
	for _, flag := range []string{"config", "verbose", "log-level"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, nil, nil)
	if err := h.run("completion", "bash"); err != nil {
		t.Fatalf("completion bash error = %v", err)
	}
	if !bytes.Contains(h.stdout.Bytes(), []byte("wxsinline")) {
		t.Errorf("completion script does not mention the command:\n%s", h.stdout.String())
	}

	if err := h.run("completion", "tcsh"); err == nil {
		t.Error("completion tcsh should be rejected")
	}
}
