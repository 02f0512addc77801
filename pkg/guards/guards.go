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

// Package guards implements the individual countermeasures. Each Guard is
// activated against a video and returns a Handle; the Guard has side effects
// only until that Handle is deactivated.
package guards

import (
	"sync"

	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/player"
)

const (
	NamePause   = "pause"
	NameSeek    = "seek"
	NameOverlay = "overlay"
)

// Guard is a single countermeasure.
type Guard interface {
	Name() string
	// Activate registers the guard's observers and timers and returns at
	// once. It must run on the event loop.
	Activate(v player.Video) Handle
}

// Handle ends one activation of a Guard.
type Handle interface {
	// Deactivate removes every observer and timer of the activation. Calls
	// after the first are no-ops.
	Deactivate()
}

// Reporter carries where a guard sends activity notifications and which
// session they belong to. A nil Notify disables reporting.
type Reporter struct {
	Notify    chan<- models.Notification
	SessionID string
}

// handle runs its cleanups exactly once.
type handle struct {
	cleanup  []func()
	once     sync.Once
	inactive bool
}

func (h *handle) add(fn func()) {
	h.cleanup = append(h.cleanup, fn)
}

func (h *handle) active() bool {
	return !h.inactive
}

func (h *handle) Deactivate() {
	h.once.Do(func() {
		h.inactive = true
		for _, fn := range h.cleanup {
			fn()
		}
		h.cleanup = nil
	})
}

type noopHandle struct{}

func (noopHandle) Deactivate() {}
