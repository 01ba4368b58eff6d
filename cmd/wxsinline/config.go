// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/issue"
)

// newConfigCommand creates the `wxsinline config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, root *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wxsinline configuration",
		Long: `Manage wxsinline configuration.

The user configuration is stored in:
  - Linux: ~/.config/wxsinline/config.cue
  - macOS: ~/Library/Application Support/wxsinline/config.cue
  - Windows: %APPDATA%\wxsinline\config.cue

Without a user configuration, ./` + config.LocalConfigFileName + ` is used when present.
Every key can also be set with a WXSINLINE_ environment variable, e.g.
WXSINLINE_OUTPUT_MODE=write.`,
		RunE: func(c *cobra.Command, args []string) error {
			return c.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(c *cobra.Command, args []string) error {
			return showConfig(c.Context(), app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default user configuration file",
		RunE: func(c *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		RunE: func(c *cobra.Command, args []string) error {
			return showConfigPath(c.Context(), app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a configuration value and save it to the loaded config file, or to the user\n" +
			"config file when only defaults applied.\n\nKeys: " + strings.Join(config.Keys(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return setConfigValue(c.Context(), app, root, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(c.Context(), root)
			if err != nil {
				return configError(app.stderr, err, root.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, root *rootFlagValues) error {
	cfg, source, err := app.loadConfig(ctx, root)
	if err != nil {
		return configError(app.stderr, err, root.verbose)
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source == "" {
		source = SubtitleStyle.Render("(using defaults)")
	}
	fmt.Fprintf(w, "%s: %s\n\n", keyStyle.Render("Config file"), source)

	show := func(key string, value any) {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}
	show("tag", cfg.Tag)
	show("strategy", cfg.Strategy)
	show("environment", cfg.Environment)
	if cfg.FileMap != "" {
		show("file_map", cfg.FileMap)
	}
	showList(w, "patterns", cfg.Patterns)
	showList(w, "ignore", cfg.Ignore)
	show("components_only", cfg.ComponentsOnly)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("output"))
	fmt.Fprintf(w, "  mode: %s\n", valueStyle.Render(string(cfg.Output.Mode)))
	if cfg.Output.Dir != "" {
		fmt.Fprintf(w, "  dir: %s\n", valueStyle.Render(cfg.Output.Dir))
	}
	fmt.Fprintf(w, "  format: %s\n", valueStyle.Render(string(cfg.Output.Format)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))
	fmt.Fprintf(w, "  clear_screen: %s\n", valueStyle.Render(fmt.Sprint(cfg.Watch.ClearScreen)))

	fmt.Fprintln(w)
	show("log_level", cfg.LogLevel)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	return nil
}

func showList(w io.Writer, key string, items []string) {
	fmt.Fprintf(w, "%s:\n", CmdStyle.Render(key))
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", SuccessStyle.Render(item))
	}
}

func showConfigPath(ctx context.Context, app *App, root *rootFlagValues) error {
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "User config file: %s\n", cfgPath)

	// The loaded file may be the project-level one or a --config path.
	if _, source, err := app.loadConfig(ctx, root); err == nil && source != "" && source != cfgPath {
		fmt.Fprintf(app.stdout, "Loaded config file: %s\n", source)
	}
	return nil
}

func setConfigValue(ctx context.Context, app *App, root *rootFlagValues, key, value string) error {
	cfg, source, err := app.loadConfig(ctx, root)
	if err != nil {
		return configError(app.stderr, err, root.verbose)
	}

	if err := config.Set(cfg, key, value); err != nil {
		return err
	}

	if source == "" {
		err = config.Save(cfg)
	} else {
		err = config.SaveTo(cfg, source)
	}
	if err != nil {
		return issue.WrapWithContext(err, "save configuration", source)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// configError renders a load failure with its catalog entry.
func configError(w io.Writer, err error, verbose bool) error {
	renderError(w, err, verbose)
	if issue.IssueOf(err) == nil {
		renderIssue(w, issue.ConfigLoadFailedId)
	}
	return &ExitError{Code: ExitCodeFailure}
}
