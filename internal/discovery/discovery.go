// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

const (
	// SourceArgument indicates the document was named directly.
	SourceArgument Source = iota
	// SourceWalk indicates the document was found by walking a directory.
	SourceWalk
)

var (
	// ErrNoPatterns is returned when no document glob is configured.
	ErrNoPatterns = errors.New("no document patterns")
	// ErrDocumentNotFound is returned when a named path does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoDocuments is returned when discovery finds nothing to rewrite.
	ErrNoDocuments = errors.New("no documents found")
)

type (
	// Source represents how a document was found.
	Source int

	// Config holds the parameters for a Discovery.
	Config struct {
		// Fs is the filesystem documents are read from. nil means the host.
		Fs afero.Fs
		// Patterns are doublestar globs, relative to each walked directory,
		// selecting documents.
		Patterns []string
		// Ignore are doublestar globs excluded from the walk.
		Ignore []string
		// ComponentsOnly keeps only documents whose manifest declares a component.
		ComponentsOnly bool
		// Logger receives debug output about skipped entries. nil discards.
		Logger *log.Logger
	}

	// Document is one markup document to rewrite.
	Document struct {
		// Path is the document's path as found (root joined with Rel).
		Path string
		// Root is the directory the document was found under. For a document
		// named directly it is the document's own directory.
		Root string
		// Rel is Path relative to Root, slash-separated.
		Rel string
		// Source indicates how the document was found.
		Source Source
		// Manifest is the decoded component manifest when it was read.
		Manifest *Manifest
	}

	// Result bundles discovered documents with non-fatal diagnostics.
	Result struct {
		Documents   []Document
		Diagnostics []Diagnostic
	}

	// Discovery finds documents under a set of paths.
	Discovery struct {
		fs             afero.Fs
		manifests      platform.Capabilities
		matcher        *Matcher
		componentsOnly bool
		logger         *log.Logger
	}
)

// String returns a human-readable source name
func (s Source) String() string {
	switch s {
	case SourceArgument:
		return "argument"
	case SourceWalk:
		return "walk"
	default:
		return "unknown"
	}
}

// New validates cfg and returns a Discovery.
func New(cfg Config) (*Discovery, error) {
	matcher, err := NewMatcher(cfg.Patterns, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Discovery{
		fs:             fsys,
		manifests:      platform.FromFs(platform.EnvHost, fsys),
		matcher:        matcher,
		componentsOnly: cfg.ComponentsOnly,
		logger:         logger,
	}, nil
}

// Matcher returns the glob matcher discovery walks with.
func (d *Discovery) Matcher() *Matcher {
	return d.matcher
}

// Discover resolves each path into documents. Files are taken as-is;
// directories are walked. No paths means the current directory. Documents
// are returned in walk order with duplicates removed.
func (d *Discovery) Discover(ctx context.Context, paths ...string) (*Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	res := &Result{}
	seen := make(map[string]struct{})
	add := func(doc Document) {
		key := filepath.Clean(doc.Path)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		res.Documents = append(res.Documents, doc)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := d.fs.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, issue.NewErrorContext().
					WithOperation("discover documents").
					WithResource(p).
					WithIssue(issue.DocumentNotFoundId).
					WithSuggestion("Check the spelling of the path").
					Wrap(ErrDocumentNotFound).
					BuildError()
			}
			return nil, fmt.Errorf("discovery: stat %s: %w", p, err)
		}

		if !info.IsDir() {
			add(Document{
				Path:   p,
				Root:   filepath.Dir(p),
				Rel:    filepath.Base(p),
				Source: SourceArgument,
			})
			continue
		}

		if err := d.walk(ctx, p, res, add); err != nil {
			return nil, err
		}
	}

	if len(res.Documents) == 0 {
		return res, issue.NewErrorContext().
			WithOperation("discover documents").
			WithIssue(issue.NoDocumentsFoundId).
			WithSuggestion("Check the patterns and ignore globs with 'wxsinline config dump'").
			Wrap(ErrNoDocuments).
			BuildError()
	}
	return res, nil
}

// walk adds every matching document under root.
func (d *Discovery) walk(ctx context.Context, root string, res *Result, add func(Document)) error {
	return afero.Walk(d.fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodePathInaccessible,
				Message:  "skipping inaccessible path",
				Path:     path,
				Cause:    walkErr,
			})
			return nil //nolint:nilerr // intentional skip of inaccessible paths
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil //nolint:nilerr // skip paths that cannot be made relative
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && d.matcher.IgnoredDir(rel) {
				d.logger.Debug("skipping ignored directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !d.matcher.Match(rel) {
			return nil
		}

		doc := Document{Path: path, Root: root, Rel: rel, Source: SourceWalk}
		if d.componentsOnly {
			manifest, diag := d.component(path)
			if diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
			}
			if manifest == nil || !manifest.Component {
				d.logger.Debug("skipping non-component document", "path", path)
				return nil
			}
			doc.Manifest = manifest
		}

		add(doc)
		return nil
	})
}

// component reads the manifest next to documentPath. A missing manifest is
// not a diagnostic; an undecodable one is.
func (d *Discovery) component(documentPath string) (*Manifest, *Diagnostic) {
	manifestPath := ManifestPath(documentPath)
	if !d.manifests.Exists(manifestPath) {
		return nil, nil
	}

	var m Manifest
	if err := d.manifests.ReadJSON(manifestPath, &m); err != nil {
		return nil, &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeManifestUnreadable,
			Message:  "component manifest could not be decoded, skipping document",
			Path:     manifestPath,
			Cause:    err,
		}
	}
	return &m, nil
}
