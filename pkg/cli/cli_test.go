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
	"bytes"
	"context"
	"flag"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/mkalinski/backdownsell/pkg/testing/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// lumberjack's mill goroutine lives as long as the process.
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("backdownsell", flag.ContinueOnError)
	f := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestSetupFlagsDefaults(t *testing.T) {
	t.Parallel()

	f := parse(t)
	assert.Empty(t, *f.Scenario)
	assert.Empty(t, *f.ConfigDir)
	assert.Equal(t, 10*time.Millisecond, *f.Step)
	assert.False(t, *f.Debug)
	assert.False(t, *f.Realtime)
}

func TestSetupFlagsParsed(t *testing.T) {
	t.Parallel()

	f := parse(t, "-scenario", "s.yaml", "-config", "/etc/bds", "-step", "5ms", "-debug", "-realtime")
	assert.Equal(t, "s.yaml", *f.Scenario)
	assert.Equal(t, "/etc/bds", *f.ConfigDir)
	assert.Equal(t, 5*time.Millisecond, *f.Step)
	assert.True(t, *f.Debug)
	assert.True(t, *f.Realtime)
}

func TestRunScenarioWithAPI(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.WriteFile("/s.yaml", []byte("name: api\nurl: https://www.youtube.com/watch?v=x\nsteps:\n  - action: play\n")))

	cfg := helpers.NewTestConfig(t, "")
	cfg.SetAPIListen("127.0.0.1:0")
	var out bytes.Buffer
	err := RunScenario(context.Background(), fs.Fs, cfg, parse(t, "-scenario", "/s.yaml"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "watchdog.armed")
}

//nolint:paralleltest // replaces the global logger and level
func TestSetupCreatesConfigAndHonoursDebug(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	t.Setenv(config.CfgEnv, "")

	dir := t.TempDir()
	f := parse(t,
		"-config", filepath.Join(dir, "cfg"),
		"-logdir", filepath.Join(dir, "logs"),
		"-debug",
	)

	var buf bytes.Buffer
	cfg, err := Setup(f, config.BaseDefaults, []io.Writer{&buf})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "cfg", config.CfgFile))
	assert.FileExists(t, filepath.Join(dir, "logs", config.LogFile))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), "config loaded")
	assert.False(t, cfg.DebugLogging())
}

func TestRunScenarioRequiresPath(t *testing.T) {
	t.Parallel()

	err := RunScenario(context.Background(), helpers.NewMemoryFS().Fs, helpers.NewTestConfig(t, ""), parse(t), &bytes.Buffer{})
	require.ErrorIs(t, err, ErrNoScenario)
}

func TestRunScenarioSimulatedTime(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.WriteFile("/s.yaml", []byte(`name: quick
url: https://www.youtube.com/watch?v=x&t=30
steps:
  - action: play
  - action: pause
  - action: wait
    duration: 1m
`)))

	var out bytes.Buffer
	start := time.Now()
	err := RunScenario(
		context.Background(), fs.Fs, helpers.NewTestConfig(t, ""),
		parse(t, "-scenario", "/s.yaml", "-step", "1s"), &out,
	)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 30*time.Second, "simulated minute must not take a real one")

	report := out.String()
	assert.Contains(t, report, "scenario: quick")
	assert.Contains(t, report, "guard.pause_prevented    1\n")
	assert.Contains(t, report, "watchdog.expired         1\n")
}

func TestRunScenarioLoadError(t *testing.T) {
	t.Parallel()

	fs := helpers.NewMemoryFS()
	require.NoError(t, fs.WriteFile("/bad.yaml", []byte("name: x\n")))

	err := RunScenario(
		context.Background(), fs.Fs, helpers.NewTestConfig(t, ""),
		parse(t, "-scenario", "/bad.yaml"), &bytes.Buffer{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}
