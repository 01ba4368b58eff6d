// SPDX-License-Identifier: MPL-2.0

package inlining

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/discovery"
	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/pkg/inline"
)

// ErrStdoutNeedsOneDocument is returned when stdout output is requested for
// more than one document.
var ErrStdoutNeedsOneDocument = errors.New("stdout output takes exactly one document")

type (
	// Request captures the inputs of one batch run.
	Request struct {
		// Paths are files or directories to inline. Empty means ".".
		Paths []string
		// Mode selects where results go.
		Mode config.OutputMode
		// OutDir is the output root for config.OutputDir.
		OutDir string
		// Check computes the report without writing anything.
		Check bool
	}

	// Options defines the injection points for building a Service. Nil
	// fields are replaced with production defaults by New.
	Options struct {
		Resolver  *inline.Resolver
		Discovery *discovery.Discovery
		// Fs is where documents are read and written. nil means the host.
		Fs afero.Fs
		// Environment is recorded in reports.
		Environment string
		Stdout      io.Writer
		Logger      *log.Logger
	}

	// Service inlines batches of documents. It holds no per-run state and
	// may be reused across runs.
	Service struct {
		resolver    *inline.Resolver
		discovery   *discovery.Discovery
		fs          afero.Fs
		environment string
		stdout      io.Writer
		logger      *log.Logger
	}
)

// New builds a Service. A nil Discovery is allowed when callers only use
// InlineDocuments.
func New(opts Options) *Service {
	s := &Service{
		resolver:    opts.Resolver,
		discovery:   opts.Discovery,
		fs:          opts.Fs,
		environment: opts.Environment,
		stdout:      opts.Stdout,
		logger:      opts.Logger,
	}
	if s.resolver == nil {
		s.resolver = inline.New()
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Run discovers the requested documents and inlines them.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if s.discovery == nil {
		return nil, errors.New("inlining: no discovery configured")
	}

	found, err := s.discovery.Discover(ctx, req.Paths...)
	if err != nil {
		return nil, err
	}

	report, err := s.InlineDocuments(ctx, found.Documents, req)
	if report != nil {
		report.Diagnostics = diagnosticReports(found.Diagnostics)
	}
	return report, err
}

// InlineDocuments rewrites docs in order and delivers each result according
// to req. Unreadable documents are recorded as failed and do not stop the
// batch; a failed write does.
func (s *Service) InlineDocuments(ctx context.Context, docs []discovery.Document, req Request) (*Report, error) {
	mode := req.Mode
	if mode == "" {
		mode = config.OutputStdout
	}
	if !req.Check && mode == config.OutputStdout && len(docs) > 1 {
		return nil, issue.NewErrorContext().
			WithOperation("inline documents").
			WithSuggestion("Use --write to rewrite documents in place").
			WithSuggestion("Use --out-dir to write results to another directory").
			WithSuggestion("Use --check to only report what would change").
			Wrap(fmt.Errorf("%w, got %d", ErrStdoutNeedsOneDocument, len(docs))).
			BuildError()
	}
	if mode == config.OutputDir && req.OutDir == "" {
		return nil, fmt.Errorf("inlining: output directory required for %s mode", config.OutputDir)
	}
	if mode == config.OutputDir {
		docs = s.outsideDir(docs, req.OutDir)
	}

	report := &Report{
		Strategy:    s.resolver.Strategy(),
		Environment: s.environment,
		Mode:        mode,
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		d := s.inlineOne(doc)
		if d.Status != statusFailed && !req.Check {
			out, err := s.deliver(doc, d, mode, req.OutDir)
			if err != nil {
				report.add(d)
				return report, err
			}
			d.Output = out
		}
		report.add(d)
	}

	return report, nil
}

// outsideDir drops documents under dir, so an output directory inside the
// walked tree is never inlined into itself.
func (s *Service) outsideDir(docs []discovery.Document, dir string) []discovery.Document {
	out := make([]discovery.Document, 0, len(docs))
	for _, doc := range docs {
		if withinDir(doc.Path, dir) {
			s.logger.Debug("skipping output document", "document", doc.Path)
			continue
		}
		out = append(out, doc)
	}
	return out
}

func withinDir(path, dir string) bool {
	if filepath.IsAbs(path) != filepath.IsAbs(dir) {
		var err error
		if path, err = filepath.Abs(path); err != nil {
			return false
		}
		if dir, err = filepath.Abs(dir); err != nil {
			return false
		}
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// inlineOne reads and rewrites a single document.
func (s *Service) inlineOne(doc discovery.Document) DocumentReport {
	d := DocumentReport{Path: doc.Path, Document: doc}

	data, err := afero.ReadFile(s.fs, doc.Path)
	if err != nil {
		s.logger.Warn("cannot read document", "document", doc.Path, "err", err)
		d.Status = statusFailed
		d.Error = err.Error()
		return d
	}

	res := s.resolver.Inline(string(data), doc.Path)
	d.Status = res.Status.String()
	d.Changed = res.Changed()
	d.Text = res.Text
	d.References = res.References
	if res.Err != nil {
		d.Error = res.Err.Error()
	}

	if d.Changed {
		s.logger.Info("inlined document", "document", doc.Path,
			"references", len(res.References), "missing", len(res.Missing()))
	} else {
		s.logger.Debug("document unchanged", "document", doc.Path)
	}
	return d
}

// deliver writes a document result according to mode and returns the
// destination, or "" when nothing was written.
func (s *Service) deliver(doc discovery.Document, d DocumentReport, mode config.OutputMode, outDir string) (string, error) {
	switch mode {
	case config.OutputStdout:
		if _, err := io.WriteString(s.stdout, d.Text); err != nil {
			return "", fmt.Errorf("inlining: write stdout: %w", err)
		}
		return "-", nil

	case config.OutputWrite:
		if !d.Changed {
			return "", nil
		}
		return doc.Path, s.writeFile(doc.Path, d.Text, doc.Path)

	case config.OutputDir:
		dest := filepath.Join(outDir, filepath.FromSlash(doc.Rel))
		return dest, s.writeFile(dest, d.Text, doc.Path)

	default:
		return "", &config.InvalidOutputModeError{Value: mode}
	}
}

// writeFile writes text to dest, keeping the permissions of src when it exists.
func (s *Service) writeFile(dest, text, src string) error {
	perm := os.FileMode(0o644)
	if info, err := s.fs.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return writeError(dest, err)
	}
	if err := afero.WriteFile(s.fs, dest, []byte(text), perm); err != nil {
		return writeError(dest, err)
	}
	return nil
}

func writeError(dest string, err error) error {
	return issue.NewErrorContext().
		WithOperation("write document").
		WithResource(dest).
		WithIssue(issue.WriteFailedId).
		WithSuggestion("Check that the destination directory is writable").
		Wrap(err).
		BuildError()
}
