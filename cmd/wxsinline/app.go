// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/wxsinline/wxsinline/internal/config"
)

type (
	// ConfigProvider loads configuration and reports which file it came from.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// App wires CLI dependencies. Every command handler receives an App and
	// reads, writes, and prints only through it.
	App struct {
		Config  ConfigProvider
		fs      afero.Fs
		stdout  io.Writer
		stderr  io.Writer
		getenv  func(string) string
		workDir string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Fs holds the documents and, in the host environment, the files
		// they reference.
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
		// Getenv is consulted for environment detection.
		Getenv func(string) string
		// WorkDir is searched for a project-level config file. Empty means
		// the process working directory.
		WorkDir string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}

	return &App{
		Config:  deps.Config,
		fs:      deps.Fs,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		getenv:  deps.Getenv,
		workDir: deps.WorkDir,
	}, nil
}

// loadConfig loads the effective configuration for one command.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, string, error) {
	return a.Config.LoadWithSource(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        a.workDir,
	})
}
