// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wxsinline/wxsinline/internal/app/inlining"
	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/pkg/inline"
)

// issueStyle is the glamour style used for catalog entries.
const issueStyle = "dark"

// formatErrorForDisplay formats an error for user display. ActionableErrors
// include their suggestions, and in verbose mode the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError prints err and, when it links a catalog entry, the entry's help.
func renderError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	if entry := issue.IssueOf(err); entry != nil {
		renderIssue(w, entry.Id())
	}
}

func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(issueStyle)
	if err != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// renderReport writes the text form of a batch report. Unchanged documents
// are listed only in verbose mode.
func renderReport(w io.Writer, report *inlining.Report, check, verbose bool) {
	for _, d := range report.Documents {
		if !verbose && !d.Changed && d.Error == "" {
			continue
		}

		fmt.Fprintf(w, "%s  %s\n", reportPathStyle.Render(d.Path), documentStatus(d, check))
		if d.Error != "" {
			fmt.Fprintln(w, reportRefStyle.Render(WarningStyle.Render(d.Error)))
		}
		for _, ref := range d.References {
			fmt.Fprintln(w, reportRefStyle.Render(referenceLine(ref)))
		}
		if d.Output != "" && d.Output != "-" && d.Output != d.Path {
			fmt.Fprintln(w, reportRefStyle.Render("→ "+d.Output))
		}
	}

	for _, diag := range report.Diagnostics {
		prefix := WarningStyle.Render(diag.Severity)
		if diag.Path != "" {
			fmt.Fprintf(w, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", prefix, diag.Message)
	}

	fmt.Fprintln(w, reportSummaryStyle.Render(summaryLine(report.Summary, check)))
}

func documentStatus(d inlining.DocumentReport, check bool) string {
	switch {
	case d.Status == "failed":
		return ErrorStyle.Render("failed")
	case d.Changed && check:
		return WarningStyle.Render("would rewrite")
	case d.Changed:
		return SuccessStyle.Render("rewritten")
	default:
		return SubtitleStyle.Render(d.Status)
	}
}

func referenceLine(ref inline.Reference) string {
	switch {
	case ref.Skipped && ref.Module == "":
		return fmt.Sprintf("- %s (skipped: no module attribute)", ref.Source)
	case ref.Skipped:
		return fmt.Sprintf("- %s (skipped: inside a replaced tag)", ref.Source)
	case ref.Missing:
		return fmt.Sprintf("%s ← %s %s", ref.Module, ref.Source, WarningStyle.Render("(unreadable, empty body)"))
	default:
		return fmt.Sprintf("%s ← %s", ref.Module, ref.Source)
	}
}

func summaryLine(s inlining.Summary, check bool) string {
	verb := "rewritten"
	if check {
		verb = "would change"
	}

	parts := []string{
		fmt.Sprintf("%d %s", s.Rewritten, verb),
		fmt.Sprintf("%d unchanged", s.Unchanged),
	}
	if s.Failed > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
	}
	line := fmt.Sprintf("%s: %s", plural(s.Documents, "document"), strings.Join(parts, ", "))

	if s.References > 0 {
		line += fmt.Sprintf("; %s inlined", plural(s.Inlined, "reference"))
		if s.Missing > 0 {
			line += fmt.Sprintf(" (%d unreadable)", s.Missing)
		}
		if s.Skipped > 0 {
			line += fmt.Sprintf(", %d skipped", s.Skipped)
		}
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
