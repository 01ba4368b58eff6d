// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/internal/testutil"
)

func rels(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Rel)
	}
	return out
}

var project = map[string]string{
	"/proj/app.json":                                  `{}`,
	"/proj/pages/index/index.wxml":                    `<view/>`,
	"/proj/pages/index/index.json":                    `{}`,
	"/proj/components/card/card.wxml":                 `<wxs module="m" src="m.wxs"/>`,
	"/proj/components/card/card.json":                 `{"component": true}`,
	"/proj/components/card/m.wxs":                     `module.exports = {}`,
	"/proj/components/broken/broken.wxml":             `<view/>`,
	"/proj/components/broken/broken.json":             `{"component": `,
	"/proj/node_modules/lib/lib.wxml":                 `<view/>`,
	"/proj/miniprogram_npm/vant/button/index.wxml":    `<view/>`,
	"/proj/miniprogram_npm/vant/button/index.json":    `{"component": true}`,
	"/proj/components/card/README.md":                 `# card`,
	"/proj/components/nomanifest/nomanifest.wxml":     `<view/>`,
	"/proj/components/card/templates/item.wxml":       `<template name="item"/>`,
	"/proj/components/card/templates/item.json":       `{"component": false}`,
}

func TestDiscover_Walk(t *testing.T) {
	t.Parallel()

	d, err := New(Config{
		Fs:       testutil.MemFs(t, project),
		Patterns: []string{"**/*.wxml"},
		Ignore:   []string{"**/node_modules/**", "**/miniprogram_npm/**"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := d.Discover(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{
		"components/broken/broken.wxml",
		"components/card/card.wxml",
		"components/card/templates/item.wxml",
		"components/nomanifest/nomanifest.wxml",
		"pages/index/index.wxml",
	}
	if diff := cmp.Diff(want, rels(res.Documents)); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
	for _, doc := range res.Documents {
		if doc.Root != "/proj" || doc.Source != SourceWalk {
			t.Errorf("document %s: Root = %q, Source = %s", doc.Rel, doc.Root, doc.Source)
		}
	}
}

func TestDiscover_ComponentsOnly(t *testing.T) {
	t.Parallel()

	d, err := New(Config{
		Fs:             testutil.MemFs(t, project),
		Patterns:       []string{"**/*.wxml"},
		Ignore:         []string{"**/node_modules/**"},
		ComponentsOnly: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := d.Discover(context.Background(), "/proj")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{
		"components/card/card.wxml",
		"miniprogram_npm/vant/button/index.wxml",
	}
	if diff := cmp.Diff(want, rels(res.Documents)); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
	if res.Documents[0].Manifest == nil || !res.Documents[0].Manifest.Component {
		t.Errorf("Manifest = %+v, want a component manifest", res.Documents[0].Manifest)
	}

	if len(res.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %+v, want one for the broken manifest", res.Diagnostics)
	}
	diag := res.Diagnostics[0]
	if diag.Code != CodeManifestUnreadable || diag.Path != "/proj/components/broken/broken.json" {
		t.Errorf("diagnostic = %+v", diag)
	}
}

func TestDiscover_ExplicitFilesAndDedup(t *testing.T) {
	t.Parallel()

	d, err := New(Config{Fs: testutil.MemFs(t, project), Patterns: []string{"**/*.wxml"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := d.Discover(context.Background(),
		"/proj/components/card/card.wxml",
		"/proj/components/card",
		"/proj/components/card/README.md",
	)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	paths := make([]string, 0, len(res.Documents))
	for _, doc := range res.Documents {
		paths = append(paths, doc.Path)
	}
	want := []string{
		"/proj/components/card/card.wxml",
		"/proj/components/card/templates/item.wxml",
		"/proj/components/card/README.md",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
	if first := res.Documents[0]; first.Source != SourceArgument || first.Root != "/proj/components/card" || first.Rel != "card.wxml" {
		t.Errorf("explicit document = %+v", first)
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFs(t, map[string]string{"/empty/notes.txt": "x"})
	d, err := New(Config{Fs: fs, Patterns: []string{"**/*.wxml"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = d.Discover(context.Background(), "/missing")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Discover(missing) error = %v, want ErrDocumentNotFound", err)
	}
	if got := issue.IssueOf(err); got == nil || got.Id() != issue.DocumentNotFoundId {
		t.Errorf("missing path should link DocumentNotFound, got %v", got)
	}

	_, err = d.Discover(context.Background(), "/empty")
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("Discover(empty) error = %v, want ErrNoDocuments", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Discover(ctx, "/empty"); !errors.Is(err, context.Canceled) {
		t.Errorf("Discover(canceled) error = %v", err)
	}
}

func TestNew_InvalidPatterns(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrNoPatterns) {
		t.Errorf("New() without patterns error = %v", err)
	}
	if _, err := New(Config{Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("New() with a bad pattern should fail")
	}
	if _, err := New(Config{Patterns: []string{"**/*.wxml"}, Ignore: []string{"{a,b"}}); err == nil {
		t.Error("New() with a bad ignore pattern should fail")
	}
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	m, err := NewMatcher([]string{"**/*.wxml", "**/*.wxs"}, []string{"**/node_modules/**", "dist/**"})
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	tests := []struct {
		rel        string
		match      bool
		ignoredDir bool
	}{
		{"index.wxml", true, false},
		{"components/card/m.wxs", true, false},
		{"components/card/card.json", false, false},
		{"node_modules/x/index.wxml", false, true},
		{"node_modules", false, true},
		{"dist", false, true},
		{"distribution/a.wxml", true, false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.rel); got != tt.match {
			t.Errorf("Match(%q) = %v, want %v", tt.rel, got, tt.match)
		}
		if got := m.IgnoredDir(tt.rel); got != tt.ignoredDir {
			t.Errorf("IgnoredDir(%q) = %v, want %v", tt.rel, got, tt.ignoredDir)
		}
	}
}

func TestManifestPath(t *testing.T) {
	t.Parallel()

	if got := ManifestPath("/p/comp/index.wxml"); got != "/p/comp/index.json" {
		t.Errorf("ManifestPath() = %q", got)
	}
	if got := ManifestPath("noext"); got != "noext.json" {
		t.Errorf("ManifestPath(noext) = %q", got)
	}
}
