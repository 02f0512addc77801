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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mkalinski/backdownsell/internal/telemetry"
	"github.com/mkalinski/backdownsell/pkg/cli"
	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal; the process environment still applies.
	envErr := godotenv.Load()

	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	if *flags.Version {
		_, _ = fmt.Printf("Backdownsell v%s\n", config.AppVersion)
		return nil
	}

	var logWriters []io.Writer
	if *flags.Debug {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg, err := cli.Setup(flags, config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}

	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.RunScenario(ctx, afero.NewOsFs(), cfg, flags, os.Stdout)
}
