// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wxsinline/wxsinline/internal/app/inlining"
	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

func TestInline_Stdout(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	if err := h.run("inline", "/proj/components/card/card.wxml"); err != nil {
		t.Fatalf("inline error = %v\nstderr:\n%s", err, h.stderr.String())
	}

	if got := h.stdout.String(); got != cardOut {
		t.Errorf("stdout = %q, want %q", got, cardOut)
	}
	if !strings.Contains(h.stderr.String(), "1 document") {
		t.Errorf("report missing from stderr:\n%s", h.stderr.String())
	}
}

func TestInline_StdoutNeedsOneDocument(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	err := h.run("inline", "/proj")
	if exitCode(err) != ExitCodeFailure {
		t.Fatalf("exit code = %d (%v), want %d", exitCode(err), err, ExitCodeFailure)
	}
	if !strings.Contains(h.stderr.String(), "exactly one document") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestInline_Write(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	if err := h.run("inline", "--write", "/proj"); err != nil {
		t.Fatalf("inline --write error = %v\nstderr:\n%s", err, h.stderr.String())
	}

	if got := h.read(t, "/proj/components/card/card.wxml"); got != cardOut {
		t.Errorf("card.wxml = %q, want %q", got, cardOut)
	}
	if !strings.Contains(h.stdout.String(), "rewritten") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestInline_OutDir(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	if err := h.run("inline", "--out-dir", "/dist", "/proj"); err != nil {
		t.Fatalf("inline --out-dir error = %v\nstderr:\n%s", err, h.stderr.String())
	}

	if got := h.read(t, "/dist/components/card/card.wxml"); got != cardOut {
		t.Errorf("dist card.wxml = %q", got)
	}
	if got := h.read(t, "/proj/components/card/card.wxml"); got != cardDoc {
		t.Errorf("source rewritten in out-dir mode: %q", got)
	}
}

func TestInline_WriteAndOutDirExclusive(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	if err := h.run("inline", "--write", "--out-dir", "/dist", "/proj"); err == nil {
		t.Error("--write with --out-dir should be rejected")
	}
}

func TestInline_Check(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	err := h.run("inline", "--check", "/proj")
	if exitCode(err) != ExitCodeFailure {
		t.Fatalf("check on pending changes: exit code = %d (%v)", exitCode(err), err)
	}
	if got := h.read(t, "/proj/components/card/card.wxml"); got != cardDoc {
		t.Errorf("--check wrote the document: %q", got)
	}
	if !strings.Contains(h.stdout.String(), "would rewrite") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	if err := h.run("inline", "--write", "/proj"); err != nil {
		t.Fatalf("inline --write error = %v", err)
	}
	if err := h.run("inline", "--check", "/proj"); err != nil {
		t.Errorf("check after write = %v, want nil", err)
	}
}

func TestInline_JSONReport(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, nil)
	if err := h.run("inline", "--write", "--format", "json", "/proj"); err != nil {
		t.Fatalf("inline error = %v\nstderr:\n%s", err, h.stderr.String())
	}

	var report inlining.Report
	if err := json.Unmarshal(h.stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, h.stdout.String())
	}
	want := inlining.Summary{Documents: 2, Rewritten: 1, Unchanged: 1, References: 1, Inlined: 1}
	if diff := cmp.Diff(want, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if report.Mode != config.OutputWrite || report.Environment != string(platform.EnvHost) {
		t.Errorf("report mode/environment = %s/%s", report.Mode, report.Environment)
	}
}

func TestInline_FlagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"strategy", []string{"--strategy", "regex"}, "--strategy"},
		{"env", []string{"--env", "cloud"}, "--env"},
		{"format", []string{"--format", "xml"}, "--format"},
		{"log level", []string{"--log-level", "loud"}, "--log-level"},
		{"tag", []string{"--tag", "not a tag"}, "--tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, projectFiles, nil, nil)
			args := append([]string{"inline", "--write"}, tt.args...)
			err := h.run(append(args, "/proj")...)
			if exitCode(err) != ExitCodeFailure {
				t.Fatalf("exit code = %d (%v), want %d", exitCode(err), err, ExitCodeFailure)
			}
			if !strings.Contains(h.stderr.String(), tt.want) {
				t.Errorf("stderr does not name %s:\n%s", tt.want, h.stderr.String())
			}
			if got := h.read(t, "/proj/components/card/card.wxml"); got != cardDoc {
				t.Errorf("document written despite a flag error: %q", got)
			}
		})
	}
}

func TestInline_FileMap(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"/proj/card.wxml":   `<wxs module="fmt" src="./fmt.wxs"/>`,
		"/bundle/map.json":  `{"/proj/fmt.wxs": "BUNDLED"}`,
	}
	want := `<wxs module="fmt">BUNDLED</wxs>`

	t.Run("flag", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, files, nil, nil)
		if err := h.run("inline", "--file-map", "/bundle/map.json", "/proj/card.wxml"); err != nil {
			t.Fatalf("inline error = %v\nstderr:\n%s", err, h.stderr.String())
		}
		if got := h.stdout.String(); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Parallel()

		env := map[string]string{platform.FileMapEnvVar: "/bundle/map.json"}
		h := newHarness(t, files, env, nil)
		if err := h.run("inline", "/proj/card.wxml"); err != nil {
			t.Fatalf("inline error = %v\nstderr:\n%s", err, h.stderr.String())
		}
		if got := h.stdout.String(); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
	})

	t.Run("explicit host wins over the environment", func(t *testing.T) {
		t.Parallel()

		env := map[string]string{platform.FileMapEnvVar: "/bundle/map.json"}
		h := newHarness(t, files, env, nil)
		if err := h.run("inline", "--env", "host", "/proj/card.wxml"); err != nil {
			t.Fatalf("inline error = %v\nstderr:\n%s", err, h.stderr.String())
		}
		// fmt.wxs does not exist on the host, so the body is empty.
		if got := h.stdout.String(); got != `<wxs module="fmt"></wxs>` {
			t.Errorf("stdout = %q", got)
		}
	})

	t.Run("missing bundle", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, files, nil, nil)
		err := h.run("inline", "--file-map", "/bundle/nope.json", "/proj/card.wxml")
		if exitCode(err) != ExitCodeFailure {
			t.Fatalf("exit code = %d (%v)", exitCode(err), err)
		}
		if !strings.Contains(h.stderr.String(), "/bundle/nope.json") {
			t.Errorf("stderr does not name the bundle:\n%s", h.stderr.String())
		}
	})
}

func TestInline_MissingReference(t *testing.T) {
	t.Parallel()

	files := map[string]string{"/proj/page.wxml": `<wxs module="m" src="./gone.wxs"/>`}
	h := newHarness(t, files, nil, nil)
	if err := h.run("inline", "--write", "/proj"); err != nil {
		t.Fatalf("inline error = %v", err)
	}

	if got := h.read(t, "/proj/page.wxml"); got != `<wxs module="m"></wxs>` {
		t.Errorf("page.wxml = %q", got)
	}
	if !strings.Contains(h.stdout.String(), "1 unreadable") {
		t.Errorf("summary does not count the unreadable reference:\n%s", h.stdout.String())
	}
}

func TestInline_ConfigLoadError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, projectFiles, nil, &fakeConfigProvider{err: errors.New("broken config")})
	err := h.run("inline", "/proj/components/card/card.wxml")
	if exitCode(err) != ExitCodeFailure {
		t.Fatalf("exit code = %d (%v)", exitCode(err), err)
	}
	if !strings.Contains(h.stderr.String(), "broken config") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestInline_ConfiguredOutputMode(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output.Mode = config.OutputWrite
	h := newHarness(t, projectFiles, nil, &fakeConfigProvider{cfg: cfg})

	if err := h.run("inline", "/proj"); err != nil {
		t.Fatalf("inline error = %v\nstderr:\n%s", err, h.stderr.String())
	}
	if got := h.read(t, "/proj/components/card/card.wxml"); got != cardOut {
		t.Errorf("card.wxml = %q", got)
	}
}

func TestInlineRequest(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output = config.OutputConfig{Mode: config.OutputDir, Dir: "build", Format: config.FormatText}

	tests := []struct {
		name  string
		flags inlineFlagValues
		want  inlining.Request
	}{
		{"config", inlineFlagValues{}, inlining.Request{Mode: config.OutputDir, OutDir: "build"}},
		{"write", inlineFlagValues{write: true}, inlining.Request{Mode: config.OutputWrite, OutDir: "build"}},
		{"out-dir", inlineFlagValues{outDir: "dist"}, inlining.Request{Mode: config.OutputDir, OutDir: "dist"}},
		{"check", inlineFlagValues{check: true}, inlining.Request{Mode: config.OutputDir, OutDir: "build", Check: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := inlineRequest(cfg, &tt.flags, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("inlineRequest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
