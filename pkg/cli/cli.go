// Backdownsell Core
// Copyright (c) 2026 The Backdownsell Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Backdownsell Core.
//
// Backdownsell Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Backdownsell Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Backdownsell Core.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/mkalinski/backdownsell/internal/telemetry"
	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/mkalinski/backdownsell/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNoScenario = errors.New("a scenario file is required (-scenario)")

type Flags struct {
	Scenario  *string
	ConfigDir *string
	LogDir    *string
	Listen    *string
	Step      *time.Duration
	Debug     *bool
	Realtime  *bool
	Version   *bool
}

// SetupFlags registers the command line flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Scenario: fs.String(
			"scenario",
			"",
			"path to a YAML scenario to run against the simulated page",
		),
		ConfigDir: fs.String(
			"config",
			"",
			"directory holding "+config.CfgFile+" (default: user config dir)",
		),
		LogDir: fs.String(
			"logdir",
			"",
			"directory for the rotating log file (default: temp dir)",
		),
		Listen: fs.String(
			"listen",
			"",
			"serve the activity API on this address (overrides config)",
		),
		Step: fs.Duration(
			"step",
			10*time.Millisecond,
			"simulated clock resolution for wait steps",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging regardless of config",
		),
		Realtime: fs.Bool(
			"realtime",
			false,
			"wait on the wall clock instead of simulated time",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Setup initializes logging and loads the config.
func Setup(f *Flags, defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	logDir := *f.LogDir
	if logDir == "" {
		logDir = helpers.DefaultLogDir()
	}
	if err := helpers.InitLogging(logDir, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfgDir := *f.ConfigDir
	if cfgDir == "" {
		dir, err := helpers.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		cfgDir = dir
	}

	cfg, err := config.NewConfig(cfgDir, defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if *f.Debug || cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Debug().Str("config", cfg.Path()).Msg("config loaded")

	if *f.Listen != "" {
		cfg.SetAPIListen(*f.Listen)
	}

	if err := telemetry.Init(
		cfg.ErrorReporting(),
		cfg.ErrorReportingDSN(),
		config.AppVersion,
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
