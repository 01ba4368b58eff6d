// SPDX-License-Identifier: MPL-2.0

package inlining

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/discovery"
	"github.com/wxsinline/wxsinline/pkg/inline"
)

// ErrUnsupportedFormat is returned by Encode for formats it does not serialize.
var ErrUnsupportedFormat = errors.New("unsupported report format")

type (
	// Report is the outcome of one batch run, in document order.
	Report struct {
		Strategy    inline.Strategy    `json:"strategy" yaml:"strategy" toml:"strategy"`
		Environment string             `json:"environment" yaml:"environment" toml:"environment"`
		Mode        config.OutputMode  `json:"mode" yaml:"mode" toml:"mode"`
		Summary     Summary            `json:"summary" yaml:"summary" toml:"summary"`
		Documents   []DocumentReport   `json:"documents" yaml:"documents" toml:"documents"`
		Diagnostics []DiagnosticReport `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" toml:"diagnostics,omitempty"`
	}

	// Summary counts the documents and references of a Report.
	Summary struct {
		Documents  int `json:"documents" yaml:"documents" toml:"documents"`
		Rewritten  int `json:"rewritten" yaml:"rewritten" toml:"rewritten"`
		Unchanged  int `json:"unchanged" yaml:"unchanged" toml:"unchanged"`
		Failed     int `json:"failed" yaml:"failed" toml:"failed"`
		References int `json:"references" yaml:"references" toml:"references"`
		Inlined    int `json:"inlined" yaml:"inlined" toml:"inlined"`
		Missing    int `json:"missing" yaml:"missing" toml:"missing"`
		Skipped    int `json:"skipped" yaml:"skipped" toml:"skipped"`
	}

	// DocumentReport is the outcome for a single document.
	DocumentReport struct {
		Path string `json:"path" yaml:"path" toml:"path"`
		// Output is where the result was written, empty when nothing was written.
		Output     string             `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
		Status     string             `json:"status" yaml:"status" toml:"status"`
		References []inline.Reference `json:"references,omitempty" yaml:"references,omitempty" toml:"references,omitempty"`
		// Error explains why the document was left unchanged or not processed.
		Error string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`

		Document discovery.Document `json:"-" yaml:"-" toml:"-"`
		Changed  bool               `json:"-" yaml:"-" toml:"-"`
		Text     string             `json:"-" yaml:"-" toml:"-"`
	}

	// DiagnosticReport is a serializable discovery diagnostic.
	DiagnosticReport struct {
		Severity string `json:"severity" yaml:"severity" toml:"severity"`
		Code     string `json:"code" yaml:"code" toml:"code"`
		Message  string `json:"message" yaml:"message" toml:"message"`
		Path     string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	}
)

const statusFailed = "failed"

// WouldChange reports whether any document was, or in check mode would be,
// rewritten.
func (r *Report) WouldChange() bool {
	return r.Summary.Rewritten > 0
}

// Changed returns the reports of rewritten documents.
func (r *Report) Changed() []DocumentReport {
	var out []DocumentReport
	for _, d := range r.Documents {
		if d.Changed {
			out = append(out, d)
		}
	}
	return out
}

// add appends a document outcome and updates the summary.
func (r *Report) add(d DocumentReport) {
	r.Documents = append(r.Documents, d)
	r.Summary.Documents++

	switch {
	case d.Status == statusFailed:
		r.Summary.Failed++
	case d.Changed:
		r.Summary.Rewritten++
	default:
		r.Summary.Unchanged++
	}

	for _, ref := range d.References {
		r.Summary.References++
		switch {
		case ref.Skipped:
			r.Summary.Skipped++
		case ref.Missing:
			r.Summary.Missing++
			r.Summary.Inlined++
		default:
			r.Summary.Inlined++
		}
	}
}

func diagnosticReports(diags []discovery.Diagnostic) []DiagnosticReport {
	out := make([]DiagnosticReport, 0, len(diags))
	for _, d := range diags {
		msg := d.Message
		if d.Cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, d.Cause)
		}
		out = append(out, DiagnosticReport{
			Severity: string(d.Severity),
			Code:     d.Code,
			Message:  msg,
			Path:     d.Path,
		})
	}
	return out
}

// Encode writes the report to w as JSON, YAML, or TOML. Text reports are
// styled by the CLI and return ErrUnsupportedFormat here.
func (r *Report) Encode(w io.Writer, format config.ReportFormat) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(r)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
