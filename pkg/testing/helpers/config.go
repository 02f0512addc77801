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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/stretchr/testify/require"
)

// NewTestConfig writes toml (after the schema line) to a temp config file
// and loads it.
func NewTestConfig(t *testing.T, toml string) *config.Instance {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf("config_schema = %d\n%s", config.SchemaVersion, toml)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.CfgFile), []byte(content), 0o600))

	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}
