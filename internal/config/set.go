// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/maps"

	"github.com/wxsinline/wxsinline/pkg/inline"
	"github.com/wxsinline/wxsinline/pkg/platform"
)

// ErrUnknownKey is returned by Set for keys that do not name a config field.
var ErrUnknownKey = errors.New("unknown config key")

type setter func(cfg *Config, value string) error

var setters = map[string]setter{
	"tag": func(cfg *Config, v string) error {
		cfg.Tag = strings.ToLower(v)
		return nil
	},
	"strategy": func(cfg *Config, v string) error {
		s, err := inline.ParseStrategy(v)
		cfg.Strategy = s
		return err
	},
	"environment": func(cfg *Config, v string) error {
		env, err := platform.ParseEnv(v)
		cfg.Environment = env
		return err
	},
	"file_map": func(cfg *Config, v string) error {
		cfg.FileMap = v
		return nil
	},
	"patterns": func(cfg *Config, v string) error {
		cfg.Patterns = splitList(v)
		return nil
	},
	"ignore": func(cfg *Config, v string) error {
		cfg.Ignore = splitList(v)
		return nil
	},
	"components_only": boolSetter(func(cfg *Config) *bool { return &cfg.ComponentsOnly }),
	"output.mode": func(cfg *Config, v string) error {
		cfg.Output.Mode = OutputMode(v)
		return nil
	},
	"output.dir": func(cfg *Config, v string) error {
		cfg.Output.Dir = v
		return nil
	},
	"output.format": func(cfg *Config, v string) error {
		cfg.Output.Format = ReportFormat(v)
		return nil
	},
	"watch.debounce": func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
		cfg.Watch.Debounce = d
		return nil
	},
	"watch.clear_screen": boolSetter(func(cfg *Config) *bool { return &cfg.Watch.ClearScreen }),
	"log_level": func(cfg *Config, v string) error {
		cfg.LogLevel = LogLevel(strings.ToLower(v))
		return nil
	},
	"ui.verbose": boolSetter(func(cfg *Config) *bool { return &cfg.UI.Verbose }),
}

// Keys returns the settable config keys in sorted order.
func Keys() []string {
	return slices.Sorted(maps.Keys(setters))
}

// Set assigns value to the dotted key on cfg and validates the result.
// cfg is left unchanged when the key is unknown, the value does not parse,
// or the resulting configuration is invalid.
func Set(cfg *Config, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	next := *cfg
	next.Patterns = slices.Clone(cfg.Patterns)
	next.Ignore = slices.Clone(cfg.Ignore)
	if err := set(&next, value); err != nil {
		return err
	}
	if valid, errs := next.IsValid(); !valid {
		return joinFieldErrors(errs)
	}

	*cfg = next
	return nil
}

func boolSetter(field func(*Config) *bool) setter {
	return func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		*field(cfg) = b
		return nil
	}
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
