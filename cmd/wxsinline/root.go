// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/wxsinline/wxsinline/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath string
	verbose    bool
	logLevel   string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Inline external inline-script references in mini-program templates",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - inline external inline-script references") + `

wxsinline rewrites template documents so that every
<wxs module="m" src="path"/> reference carries the referenced file's
content inline. Referenced files come from the host filesystem or from a
JSON file-map bundle.

` + SubtitleStyle.Render("Examples:") + `
  wxsinline inline page.wxml            Print the inlined document
  wxsinline inline --write .            Rewrite every document in place
  wxsinline watch --out-dir dist src    Keep dist/ inlined while editing src/
  wxsinline config show                 Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is the user config, then ./"+config.LocalConfigFileName+")")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newInlineCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
		newCompletionCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App, runs the command tree, and exits with
// the code carried by an ExitError. It is called by main.main().
func Execute() {
	os.Exit(execute(context.Background(), Dependencies{}, os.Args[1:]))
}

func execute(ctx context.Context, deps Dependencies, args []string) int {
	app, err := NewApp(deps)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return ExitCodeFailure
	}

	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err = fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCodeFailure
}

// handleError prints errors that reached fang unrendered. Command handlers
// render their own failures and return a bare ExitError.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
