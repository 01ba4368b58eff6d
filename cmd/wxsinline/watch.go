// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wxsinline/wxsinline/internal/app/inlining"
	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/discovery"
	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/internal/watch"
)

type (
	watchFlagValues struct {
		engineFlagValues
		outDir      string
		debounce    string
		clearScreen bool
	}

	// watchSession re-inlines the documents affected by each batch of
	// filesystem changes.
	watchSession struct {
		*session
		root    string
		req     inlining.Request
		index   *inlining.Index
		app     *App
		verbose bool
	}
)

// newWatchCommand creates the `wxsinline watch` command.
func newWatchCommand(app *App, root *rootFlagValues) *cobra.Command {
	flags := &watchFlagValues{}

	c := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-inline documents as they change",
		Long: `Inline every document under dir, then keep watching it.

A changed document is re-inlined. With --out-dir, sources keep their
references, so editing a referenced file also re-inlines the documents that
use it. Without --out-dir documents are rewritten in place and, once
inlined, no longer depend on the referenced files.

Stop with Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runWatch(c, app, root, flags, args)
		},
	}

	flags.register(c)
	c.Flags().StringVar(&flags.outDir, "out-dir", "", "write results under this directory instead of in place")
	c.Flags().StringVar(&flags.debounce, "debounce", "", "quiet period before re-inlining, e.g. 300ms")
	c.Flags().BoolVar(&flags.clearScreen, "clear", false, "clear the terminal before each run")

	return c
}

func runWatch(c *cobra.Command, app *App, root *rootFlagValues, flags *watchFlagValues, args []string) error {
	overrides := flags.overrides(c, root)
	if c.Flags().Changed("debounce") {
		overrides = append(overrides, [2]string{"watch.debounce", flags.debounce})
	}
	if c.Flags().Changed("clear") {
		overrides = append(overrides, [2]string{"watch.clear_screen", fmt.Sprint(flags.clearScreen)})
	}

	sess, err := app.newSession(c.Context(), root, overrides)
	if err != nil {
		renderError(app.stderr, err, root.verbose)
		return &ExitError{Code: ExitCodeFailure}
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	ws, err := newWatchSession(app, sess, dir, flags.outDir, root.verbose)
	if err != nil {
		renderError(app.stderr, err, root.verbose)
		return &ExitError{Code: ExitCodeFailure}
	}

	if err := ws.initial(c.Context()); err != nil {
		renderError(app.stderr, err, ws.verbose)
		return &ExitError{Code: ExitCodeFailure}
	}

	w, err := watch.New(watch.Config{
		Ignore:      ws.ignores(),
		Debounce:    sess.cfg.Watch.Debounce,
		ClearScreen: sess.cfg.Watch.ClearScreen,
		BaseDir:     ws.root,
		OnChange:    ws.handle,
		Stdout:      app.stdout,
		Logger:      sess.logger,
	})
	if err == nil {
		fmt.Fprintf(app.stdout, "%s Watching %s (Ctrl+C to stop)\n", CmdStyle.Render("→"), ws.root)
		err = w.Run(c.Context())
	}
	if err != nil {
		renderError(app.stderr, watchError(ws.root, err), ws.verbose)
		return &ExitError{Code: ExitCodeFailure}
	}
	return nil
}

func newWatchSession(app *App, sess *session, dir, outDir string, verbose bool) (*watchSession, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	req := inlining.Request{Paths: []string{root}, Mode: config.OutputWrite}
	if outDir == "" && sess.cfg.Output.Mode == config.OutputDir {
		outDir = sess.cfg.Output.Dir
	}
	if outDir != "" {
		if outDir, err = filepath.Abs(outDir); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", outDir, err)
		}
		req.Mode, req.OutDir = config.OutputDir, outDir
	}

	return &watchSession{
		session: sess,
		root:    root,
		req:     req,
		index:   inlining.NewIndex(),
		app:     app,
		verbose: verbose || sess.cfg.UI.Verbose,
	}, nil
}

// initial inlines the whole tree once. An empty tree is not an error: new
// documents are picked up as they appear.
func (ws *watchSession) initial(ctx context.Context) error {
	report, err := ws.service.Run(ctx, ws.req)
	if errors.Is(err, discovery.ErrNoDocuments) {
		ws.logger.Warn("no documents yet", "dir", ws.root)
		return nil
	}
	if err != nil {
		return err
	}
	ws.index.Update(report)
	renderReport(ws.app.stdout, report, false, ws.verbose)
	return nil
}

// ignores adds the output directory to the configured ignores so writing
// results never triggers another run.
func (ws *watchSession) ignores() []string {
	ignores := slices.Clone(ws.cfg.Ignore)
	if ws.req.OutDir == "" {
		return ignores
	}
	rel, err := filepath.Rel(ws.root, ws.req.OutDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ignores
	}
	return append(ignores, filepath.ToSlash(rel)+"/**")
}

// handle re-inlines the documents affected by changes: changed documents,
// documents that appeared, and documents referencing a changed file.
func (ws *watchSession) handle(ctx context.Context, changes []watch.Change) error {
	targets := make(map[string]discovery.Document)
	rediscover := false

	for _, ch := range changes {
		for _, doc := range ws.index.Dependents(ch.Path) {
			targets[doc.Path] = doc
		}

		if ch.Removed {
			if _, ok := ws.index.Known(ch.Path); ok {
				ws.logger.Info("document removed", "document", ch.Path)
				ws.index.Forget(ch.Path)
			}
			delete(targets, ch.Path)
			continue
		}

		if doc, ok := ws.index.Known(ch.Path); ok {
			targets[doc.Path] = doc
		} else if ws.discovery.Matcher().Match(ch.Rel) {
			rediscover = true
		}
	}

	if rediscover {
		if err := ws.addNew(ctx, targets); err != nil {
			return err
		}
	}
	if len(targets) == 0 {
		return nil
	}

	docs := make([]discovery.Document, 0, len(targets))
	for _, doc := range targets {
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b discovery.Document) int { return strings.Compare(a.Path, b.Path) })

	report, err := ws.service.InlineDocuments(ctx, docs, ws.req)
	if report != nil {
		ws.index.Update(report)
		renderReport(ws.app.stdout, report, false, ws.verbose)
	}
	return err
}

// addNew rediscovers the tree and adds documents the index does not know,
// so components-only filtering applies to new documents too.
func (ws *watchSession) addNew(ctx context.Context, targets map[string]discovery.Document) error {
	found, err := ws.discovery.Discover(ctx, ws.root)
	if err != nil && !errors.Is(err, discovery.ErrNoDocuments) {
		return err
	}
	if found == nil {
		return nil
	}
	for _, doc := range found.Documents {
		if _, ok := ws.index.Known(doc.Path); !ok {
			targets[doc.Path] = doc
		}
	}
	return nil
}

func watchError(dir string, err error) error {
	return issue.NewErrorContext().
		WithOperation("watch documents").
		WithResource(dir).
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		BuildError()
}
