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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkalinski/backdownsell/pkg/api/validation"
	"github.com/mkalinski/backdownsell/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "BACKDOWNSELL_CFG"
)

// Timings used when the config leaves them unset.
const (
	DefaultGrace               = 5 * time.Second
	DefaultOverlayPollInterval = 250 * time.Millisecond
	DefaultOverlayClickDelay   = 500 * time.Millisecond
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Watchdog     Watchdog  `toml:"watchdog"`
	Telemetry    Telemetry `toml:"telemetry,omitempty"`
	API          API       `toml:"api,omitempty"`
	ConfigSchema int       `toml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging"`
}

// Watchdog timings are duration strings ("5s", "250ms"). A nil field means
// the built-in default.
type Watchdog struct {
	Grace               *string `toml:"grace,omitempty" validate:"omitnil,duration"`
	OverlayPollInterval *string `toml:"overlay_poll_interval,omitempty" validate:"omitnil,duration"`
	OverlayClickDelay   *string `toml:"overlay_click_delay,omitempty" validate:"omitnil,duration"`
}

// API serves the activity stream when Listen is set ("127.0.0.1:7497").
type API struct {
	Listen string `toml:"listen,omitempty" validate:"omitempty,hostname_port"`
}

// Telemetry is opt-in error reporting to the user's own Sentry project.
type Telemetry struct {
	DSN     string `toml:"dsn,omitempty" validate:"required_if=Enabled true,omitempty,url"`
	Enabled bool   `toml:"enabled"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from configDir, or from the path in
// BACKDOWNSELL_CFG when set. A missing file is created from defaults.
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := validation.DefaultValidator.Validate(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func durationOr(key string, val *string, def time.Duration) time.Duration {
	if val == nil {
		return def
	}
	d, err := time.ParseDuration(*val)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", *val).Msg("invalid duration, using default")
		return def
	}
	return d
}

func durationString(d time.Duration) *string {
	s := d.String()
	return &s
}

// GraceWindow is how long guards stay active after playback starts.
func (c *Instance) GraceWindow() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return durationOr("watchdog.grace", c.vals.Watchdog.Grace, DefaultGrace)
}

func (c *Instance) SetGraceWindow(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Watchdog.Grace = durationString(d)
}

func (c *Instance) OverlayPollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return durationOr(
		"watchdog.overlay_poll_interval",
		c.vals.Watchdog.OverlayPollInterval,
		DefaultOverlayPollInterval,
	)
}

func (c *Instance) SetOverlayPollInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Watchdog.OverlayPollInterval = durationString(d)
}

func (c *Instance) OverlayClickDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return durationOr(
		"watchdog.overlay_click_delay",
		c.vals.Watchdog.OverlayClickDelay,
		DefaultOverlayClickDelay,
	)
}

func (c *Instance) SetOverlayClickDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Watchdog.OverlayClickDelay = durationString(d)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.Enabled
}

func (c *Instance) ErrorReportingDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.DSN
}

func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.Listen
}

func (c *Instance) SetAPIListen(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.API.Listen = addr
}
