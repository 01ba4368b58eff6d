// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wxsinline/wxsinline/internal/app/inlining"
	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/issue"
)

type inlineFlagValues struct {
	engineFlagValues
	write  bool
	outDir string
	check  bool
	format string
}

// newInlineCommand creates the `wxsinline inline` command.
func newInlineCommand(app *App, root *rootFlagValues) *cobra.Command {
	flags := &inlineFlagValues{}

	c := &cobra.Command{
		Use:   "inline [paths...]",
		Short: "Inline external inline-script references",
		Long: `Replace every <wxs module="m" src="path"/> tag with an inline tag holding the
referenced file's content.

Paths may be documents or directories; directories are searched with the
configured patterns. Without --write or --out-dir a single document is
printed to stdout.

` + SubtitleStyle.Render("Examples:") + `
  wxsinline inline components/card/card.wxml       Print the inlined document
  wxsinline inline --write .                       Rewrite every document in place
  wxsinline inline --out-dir dist .                Write inlined copies under dist/
  wxsinline inline --check --format json .         Report documents that would change`,
		RunE: func(c *cobra.Command, args []string) error {
			return runInline(c, app, root, flags, args)
		},
	}

	flags.register(c)
	c.Flags().BoolVarP(&flags.write, "write", "w", false, "rewrite documents in place")
	c.Flags().StringVar(&flags.outDir, "out-dir", "", "write results under this directory, mirroring the source tree")
	c.Flags().BoolVar(&flags.check, "check", false, "write nothing; exit 1 when any document would change")
	c.Flags().StringVar(&flags.format, "format", "", "report format: text, json, yaml or toml")
	c.MarkFlagsMutuallyExclusive("write", "out-dir")

	return c
}

func runInline(c *cobra.Command, app *App, root *rootFlagValues, flags *inlineFlagValues, args []string) error {
	overrides := flags.overrides(c, root)
	if c.Flags().Changed("format") {
		overrides = append(overrides, [2]string{"output.format", flags.format})
	}

	sess, err := app.newSession(c.Context(), root, overrides)
	if err != nil {
		renderError(app.stderr, err, root.verbose)
		return &ExitError{Code: ExitCodeFailure}
	}
	verbose := root.verbose || sess.cfg.UI.Verbose

	req := inlineRequest(sess.cfg, flags, args)
	report, err := sess.service.Run(c.Context(), req)
	if err != nil {
		renderError(app.stderr, err, verbose)
		return &ExitError{Code: ExitCodeFailure}
	}

	// Documents printed to stdout keep stdout to themselves.
	out := app.stdout
	if req.Mode == config.OutputStdout && !req.Check {
		out = app.stderr
	}
	if err := writeReport(out, report, sess.cfg.Output.Format, req.Check, verbose); err != nil {
		return err
	}

	if report.Summary.Missing > 0 && sess.cfg.Output.Format == config.FormatText {
		renderIssue(app.stderr, issue.ReferenceUnresolvedId)
	}
	if req.Check && report.WouldChange() {
		if sess.cfg.Output.Format == config.FormatText {
			renderIssue(app.stderr, issue.CheckFailedId)
		}
		return &ExitError{Code: ExitCodeFailure}
	}
	if report.Summary.Failed > 0 {
		return &ExitError{Code: ExitCodeFailure}
	}
	return nil
}

// inlineRequest resolves the output mode: --write, then --out-dir, then the
// configured mode.
func inlineRequest(cfg *config.Config, flags *inlineFlagValues, args []string) inlining.Request {
	req := inlining.Request{
		Paths:  args,
		Mode:   cfg.Output.Mode,
		OutDir: cfg.Output.Dir,
		Check:  flags.check,
	}
	switch {
	case flags.write:
		req.Mode = config.OutputWrite
	case flags.outDir != "":
		req.Mode = config.OutputDir
		req.OutDir = flags.outDir
	}
	return req
}

func writeReport(w io.Writer, report *inlining.Report, format config.ReportFormat, check, verbose bool) error {
	if format == config.FormatText || format == "" {
		renderReport(w, report, check, verbose)
		return nil
	}
	if err := report.Encode(w, format); err != nil {
		return fmt.Errorf("encode %s report: %w", format, err)
	}
	return nil
}
