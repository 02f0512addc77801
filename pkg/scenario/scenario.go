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

// Package scenario scripts events against a simulated watch page so the
// countermeasures can be exercised without a browser.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mkalinski/backdownsell/pkg/api/validation"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	ActionNavigate    = "navigate"
	ActionPlay        = "play"
	ActionPause       = "pause"
	ActionSeek        = "seek"
	ActionTick        = "tick"
	ActionOverlay     = "overlay"
	ActionWait        = "wait"
	ActionAddVideo    = "add_video"
	ActionRemoveVideo = "remove_video"
)

var (
	ErrEmptyFile = errors.New("scenario file is empty")
	ErrNoVideo   = errors.New("no video on page")
)

// Scenario is a named script. The page starts at URL with one paused
// video; the initial load is reported as a navigation before the first
// step runs.
type Scenario struct {
	Name  string `yaml:"name" validate:"required"`
	URL   string `yaml:"url" validate:"required,url"`
	Steps []Step `yaml:"steps" validate:"min=1,dive"`
}

type Step struct {
	Visible  *bool   `yaml:"visible,omitempty" validate:"required_if=Action overlay"`
	Action   string  `yaml:"action" validate:"required,oneof=navigate play pause seek tick overlay wait add_video remove_video"`
	URL      string  `yaml:"url,omitempty" validate:"omitempty,url"`
	Duration string  `yaml:"duration,omitempty" validate:"required_if=Action wait,duration"`
	Position float64 `yaml:"position,omitempty" validate:"gte=0"`
}

// Wait is the parsed duration of a wait step.
func (s Step) Wait() time.Duration {
	d, _ := time.ParseDuration(s.Duration)
	return d
}

// Load reads and validates a YAML scenario file.
func Load(fs afero.Fs, path string) (*Scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario. Unknown keys are rejected
// so a typo cannot silently drop a step field.
func Parse(data []byte) (*Scenario, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := validation.DefaultValidator.Validate(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}
