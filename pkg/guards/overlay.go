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

package guards

import (
	"time"

	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/api/notifications"
	"github.com/mkalinski/backdownsell/pkg/eventloop"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/rs/zerolog/log"
)

// OverlayGuard dismisses the cued overlay once it shows up.
//
// There is no visibility signal to subscribe to, so the guard polls. The
// first visible poll ends polling and schedules a single delayed click;
// polling and the pending click never coexist.
type OverlayGuard struct {
	Reporter
	Overlay      player.Overlay
	Sched        eventloop.Scheduler
	PollInterval time.Duration
	ClickDelay   time.Duration
}

func (*OverlayGuard) Name() string { return NameOverlay }

func (g *OverlayGuard) Activate(player.Video) Handle {
	h := &handle{}

	var click eventloop.Timer
	var poll eventloop.Timer
	poll = g.Sched.Every(g.PollInterval, func() {
		if !h.active() || !g.Overlay.Visible() {
			return
		}
		poll.Stop()

		log.Debug().Str("session", g.SessionID).Dur("delay", g.ClickDelay).Msg("guards: overlay visible, scheduling click")
		click = g.Sched.AfterFunc(g.ClickDelay, func() {
			if !h.active() {
				return
			}
			g.click()
		})
	})

	h.add(func() {
		poll.Stop()
		if click != nil {
			click.Stop()
		}
	})
	return h
}

func (g *OverlayGuard) click() {
	params := models.OverlayDismissedParams{SessionID: g.SessionID}
	if err := g.Overlay.Click(); err != nil {
		log.Warn().Err(err).Str("session", g.SessionID).Msg("guards: cannot dismiss overlay")
		params.Error = err.Error()
	} else {
		log.Debug().Str("session", g.SessionID).Msg("guards: dismissed overlay")
	}
	notifications.OverlayDismissed(g.Notify, params)
}
