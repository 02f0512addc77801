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

package helpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // replaces the global logger
func TestInitLogging(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	logDir := filepath.Join(t.TempDir(), "logs", "nested")
	var buf bytes.Buffer

	require.NoError(t, InitLogging(logDir, []io.Writer{&buf}))

	log.Info().Str("session_id", "abc").Msg("watchdog: armed")

	out := buf.String()
	assert.Contains(t, out, `"message":"watchdog: armed"`)
	assert.Contains(t, out, `"session_id":"abc"`)
	assert.Contains(t, out, `"time":`)
	assert.Contains(t, out, `"caller":`)

	_, _ = LogWriter().Write([]byte("raw line\n"))
	assert.Contains(t, buf.String(), "raw line")

	data, err := os.ReadFile(filepath.Join(logDir, config.LogFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "watchdog: armed"))
}

//nolint:paralleltest // replaces the global logger
func TestInitLogging_DirIsFile(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	err := InitLogging(filepath.Join(file, "logs"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestDefaultDirs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.AppName, filepath.Base(DefaultLogDir()))

	dir, err := DefaultConfigDir()
	if err == nil {
		assert.Equal(t, config.AppName, filepath.Base(dir))
	}
}
