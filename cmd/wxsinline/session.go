// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wxsinline/wxsinline/internal/app/inlining"
	"github.com/wxsinline/wxsinline/internal/config"
	"github.com/wxsinline/wxsinline/internal/discovery"
	"github.com/wxsinline/wxsinline/internal/issue"
	"github.com/wxsinline/wxsinline/pkg/inline"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

type (
	// engineFlagValues are the flags shared by inline and watch. Each one
	// overrides the config key of the same meaning when it is set.
	engineFlagValues struct {
		tag            string
		strategy       string
		env            string
		fileMap        string
		componentsOnly bool
	}

	// session is everything one inline or watch run needs, built once from
	// the effective configuration.
	session struct {
		cfg       *config.Config
		source    string
		logger    *log.Logger
		caps      platform.Capabilities
		resolver  *inline.Resolver
		discovery *discovery.Discovery
		service   *inlining.Service
	}
)

func (f *engineFlagValues) register(c *cobra.Command) {
	flags := c.Flags()
	flags.StringVar(&f.tag, "tag", "", "inline-script element name (default from config: wxs)")
	flags.StringVar(&f.strategy, "strategy", "", "how tag text is located: spans or raw-scan")
	flags.StringVar(&f.env, "env", "", "where referenced files are read from: host or file-map")
	flags.StringVar(&f.fileMap, "file-map", "", "JSON bundle of path to content; implies --env file-map")
	flags.BoolVar(&f.componentsOnly, "components-only", false, "only process documents whose manifest declares a component")
}

// overrides returns the config keys set on the command line, in apply order.
func (f *engineFlagValues) overrides(c *cobra.Command, root *rootFlagValues) [][2]string {
	flags := c.Flags()
	var out [][2]string
	add := func(flag, key, value string) {
		if flags.Changed(flag) {
			out = append(out, [2]string{key, value})
		}
	}

	add("tag", "tag", f.tag)
	add("strategy", "strategy", f.strategy)
	add("file-map", "file_map", f.fileMap)
	if flags.Changed("file-map") && !flags.Changed("env") {
		out = append(out, [2]string{"environment", string(platform.EnvFileMap)})
	}
	add("env", "environment", f.env)
	add("components-only", "components_only", fmt.Sprint(f.componentsOnly))
	if root.logLevel != "" {
		out = append(out, [2]string{"log_level", root.logLevel})
	}
	return out
}

// newSession loads configuration, applies the command-line overrides, and
// wires the resolver, discovery, and batch service.
func (a *App) newSession(ctx context.Context, root *rootFlagValues, overrides [][2]string) (*session, error) {
	cfg, source, err := a.loadConfig(ctx, root)
	if err != nil {
		return nil, err
	}

	explicitEnv := false
	for _, kv := range overrides {
		if err := config.Set(cfg, kv[0], kv[1]); err != nil {
			return nil, flagError(kv[0], err)
		}
		explicitEnv = explicitEnv || kv[0] == "environment"
	}

	// A bundle named in the process environment switches a host session to
	// the file map unless the command line chose the environment.
	if !explicitEnv && cfg.Environment == platform.EnvHost {
		if env, bundle := platform.Detect(a.getenv); env == platform.EnvFileMap {
			cfg.Environment, cfg.FileMap = env, bundle
		}
	}

	logger := newLogger(a.stderr, cfg.LogLevel, root.verbose || cfg.UI.Verbose)

	caps, err := a.capabilities(cfg)
	if err != nil {
		return nil, err
	}

	resolver := inline.New(
		inline.WithTag(cfg.Tag),
		inline.WithStrategy(cfg.Strategy),
		inline.WithCapabilities(caps),
		inline.WithLogger(logger),
	)

	disc, err := discovery.New(discovery.Config{
		Fs:             a.fs,
		Patterns:       cfg.Patterns,
		Ignore:         cfg.Ignore,
		ComponentsOnly: cfg.ComponentsOnly,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("session ready", "config", source, "strategy", cfg.Strategy,
		"environment", caps.Env(), "tag", cfg.Tag)

	return &session{
		cfg:       cfg,
		source:    source,
		logger:    logger,
		caps:      caps,
		resolver:  resolver,
		discovery: disc,
		service: inlining.New(inlining.Options{
			Resolver:    resolver,
			Discovery:   disc,
			Fs:          a.fs,
			Environment: string(caps.Env()),
			Stdout:      a.stdout,
			Logger:      logger,
		}),
	}, nil
}

// capabilities opens the environment referenced files are read from. The
// host environment shares the App filesystem with the documents.
func (a *App) capabilities(cfg *config.Config) (platform.Capabilities, error) {
	if cfg.Environment != platform.EnvFileMap {
		return platform.FromFs(platform.EnvHost, a.fs), nil
	}

	caps, err := a.loadFileMap(cfg.FileMap)
	if err != nil {
		return platform.Capabilities{}, issue.NewErrorContext().
			WithOperation("load file map").
			WithResource(cfg.FileMap).
			WithIssue(issue.FileMapLoadFailedId).
			WithSuggestion("Pass the bundle with --file-map or " + platform.FileMapEnvVar).
			Wrap(err).
			BuildError()
	}
	return caps, nil
}

func (a *App) loadFileMap(path string) (platform.Capabilities, error) {
	if path == "" {
		return platform.Capabilities{}, fmt.Errorf("no bundle path given for the %s environment", platform.EnvFileMap)
	}
	f, err := a.fs.Open(path)
	if err != nil {
		return platform.Capabilities{}, err
	}
	defer f.Close() //nolint:errcheck // read-only handle
	return platform.LoadFileMap(f)
}

func flagError(key string, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("apply flag").
		WithResource("--" + flagName(key)).
		Wrap(err)
	if errors.Is(err, inline.ErrInvalidStrategy) {
		ec = ec.WithIssue(issue.InvalidStrategyId)
	}
	return ec.BuildError()
}

// flagName maps a config key back to the flag that set it.
func flagName(key string) string {
	switch key {
	case "file_map":
		return "file-map"
	case "environment":
		return "env"
	case "components_only":
		return "components-only"
	case "log_level":
		return "log-level"
	case "output.format":
		return "format"
	case "watch.debounce":
		return "debounce"
	case "watch.clear_screen":
		return "clear"
	default:
		return key
	}
}
