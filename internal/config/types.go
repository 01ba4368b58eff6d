// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wxsinline/wxsinline/pkg/inline"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

const (
	// OutputStdout prints rewritten documents to standard output.
	OutputStdout OutputMode = "stdout"
	// OutputWrite rewrites documents in place.
	OutputWrite OutputMode = "write"
	// OutputDir writes rewritten documents under Output.Dir, mirroring the source tree.
	OutputDir OutputMode = "dir"

	// FormatText renders the report as styled terminal text.
	FormatText ReportFormat = "text"
	// FormatJSON renders the report as JSON.
	FormatJSON ReportFormat = "json"
	// FormatYAML renders the report as YAML.
	FormatYAML ReportFormat = "yaml"
	// FormatTOML renders the report as TOML.
	FormatTOML ReportFormat = "toml"

	// LogLevelDebug logs every inlined reference.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs progress.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs recovered failures only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidOutputMode is returned when an OutputMode value is not recognized.
	ErrInvalidOutputMode = errors.New("invalid output mode")
	// ErrInvalidReportFormat is returned when a ReportFormat value is not recognized.
	ErrInvalidReportFormat = errors.New("invalid report format")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidTag is returned when the configured tag name is not a plain element name.
	ErrInvalidTag = errors.New("invalid tag name")
	// ErrInvalidOutputConfig is the sentinel error wrapped by InvalidOutputConfigError.
	ErrInvalidOutputConfig = errors.New("invalid output config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	tagNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

type (
	// OutputMode selects where rewritten documents go.
	OutputMode string

	// InvalidOutputModeError is returned when an OutputMode value is not recognized.
	// It wraps ErrInvalidOutputMode for errors.Is() compatibility.
	InvalidOutputModeError struct {
		Value OutputMode
	}

	// ReportFormat selects the encoding of the batch report.
	ReportFormat string

	// InvalidReportFormatError is returned when a ReportFormat value is not recognized.
	// It wraps ErrInvalidReportFormat for errors.Is() compatibility.
	InvalidReportFormatError struct {
		Value ReportFormat
	}

	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidTagError is returned when a tag name is empty or contains
	// characters that cannot appear in an element name.
	InvalidTagError struct {
		Value string
	}

	// InvalidOutputConfigError is returned when an OutputConfig has invalid fields.
	// It wraps ErrInvalidOutputConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidOutputConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Tag is the inline-script element to rewrite.
		Tag string `json:"tag" mapstructure:"tag"`
		// Strategy selects how replaceable tag text is located.
		Strategy inline.Strategy `json:"strategy" mapstructure:"strategy"`
		// Environment selects where referenced files are read from.
		Environment platform.Env `json:"environment" mapstructure:"environment"`
		// FileMap is the JSON bundle loaded by the file-map environment.
		FileMap string `json:"file_map" mapstructure:"file_map"`
		// Patterns are doublestar globs, relative to the walked root, that select documents.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// Ignore are doublestar globs excluded from discovery and watching.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
		// ComponentsOnly restricts discovery to documents whose manifest declares a component.
		ComponentsOnly bool `json:"components_only" mapstructure:"components_only"`
		// Output configures where results and reports go.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Watch configures watch mode.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// LogLevel is the minimum level logged to stderr.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// OutputConfig configures where rewritten documents and reports go.
	OutputConfig struct {
		Mode   OutputMode   `json:"mode" mapstructure:"mode"`
		Dir    string       `json:"dir" mapstructure:"dir"`
		Format ReportFormat `json:"format" mapstructure:"format"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce is the quiet period after the last change before re-inlining.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// ClearScreen clears the terminal before each re-run.
		ClearScreen bool `json:"clear_screen" mapstructure:"clear_screen"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the OutputMode.
func (m OutputMode) String() string { return string(m) }

// IsValid returns whether the OutputMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m OutputMode) IsValid() (bool, []error) {
	switch m {
	case OutputStdout, OutputWrite, OutputDir:
		return true, nil
	default:
		return false, []error{&InvalidOutputModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidOutputModeError.
func (e *InvalidOutputModeError) Error() string {
	return fmt.Sprintf("invalid output mode %q (valid: stdout, write, dir)", e.Value)
}

// Unwrap returns ErrInvalidOutputMode for errors.Is() compatibility.
func (e *InvalidOutputModeError) Unwrap() error { return ErrInvalidOutputMode }

// String returns the string representation of the ReportFormat.
func (f ReportFormat) String() string { return string(f) }

// IsValid returns whether the ReportFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f ReportFormat) IsValid() (bool, []error) {
	switch f {
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidReportFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidReportFormatError.
func (e *InvalidReportFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: text, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidReportFormat for errors.Is() compatibility.
func (e *InvalidReportFormatError) Unwrap() error { return ErrInvalidReportFormat }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidTagError.
func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid tag name %q: must start with a letter and contain only letters, digits, '-' or '_'", e.Value)
}

// Unwrap returns ErrInvalidTag for errors.Is() compatibility.
func (e *InvalidTagError) Unwrap() error { return ErrInvalidTag }

// IsValid returns whether the OutputConfig has valid fields. The dir mode
// needs a non-blank Dir.
func (c OutputConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Mode == OutputDir && strings.TrimSpace(c.Dir) == "" {
		errs = append(errs, fmt.Errorf("output.dir must be set when output.mode is %q", OutputDir))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidOutputConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputConfigError.
func (e *InvalidOutputConfigError) Error() string {
	return fmt.Sprintf("invalid output config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidOutputConfig for errors.Is() compatibility.
func (e *InvalidOutputConfigError) Unwrap() error { return ErrInvalidOutputConfig }

// IsValid returns whether the Config has valid fields.
// Strategy and Environment are checked with the parsers of the packages that
// own them so the accepted values never drift.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if !tagNamePattern.MatchString(c.Tag) {
		errs = append(errs, &InvalidTagError{Value: c.Tag})
	}
	if _, err := inline.ParseStrategy(string(c.Strategy)); err != nil {
		errs = append(errs, err)
	}
	if _, err := platform.ParseEnv(string(c.Environment)); err != nil {
		errs = append(errs, err)
	}
	if len(c.Patterns) == 0 {
		errs = append(errs, errors.New("patterns must list at least one glob"))
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Tag:         inline.DefaultTag,
		Strategy:    inline.StrategySpans,
		Environment: platform.EnvHost,
		Patterns:    []string{"**/*.wxml"},
		Ignore: []string{
			"**/node_modules/**",
			"**/miniprogram_npm/**",
			"**/.git/**",
		},
		ComponentsOnly: false,
		Output: OutputConfig{
			Mode:   OutputStdout,
			Format: FormatText,
		},
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			ClearScreen: false,
		},
		LogLevel: LogLevelInfo,
		UI: UIConfig{
			Verbose: false,
		},
	}
}
