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
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/api/notifications"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/mkalinski/backdownsell/pkg/timespec"
	"github.com/rs/zerolog/log"
)

// SeekGuard keeps the playhead at or after Target. The platform may jump
// the position back more than once, so every update is checked.
type SeekGuard struct {
	Reporter
	Target timespec.TimeSpec
}

func (*SeekGuard) Name() string { return NameSeek }

func (g *SeekGuard) Activate(v player.Video) Handle {
	if g.Target.IsZero() {
		return noopHandle{}
	}

	target := float64(g.Target.TotalSeconds)
	h := &handle{}
	h.add(v.AddListener(player.EventTimeUpdate, func() {
		if !h.active() {
			return
		}

		pos := v.CurrentTime()
		if pos >= target {
			return
		}
		v.SetCurrentTime(target)

		log.Debug().
			Str("session", g.SessionID).
			Float64("from", pos).
			Float64("to", target).
			Msg("guards: clamped seek before start time")
		notifications.SeekClamped(g.Notify, models.SeekClampedParams{
			SessionID: g.SessionID,
			From:      pos,
			To:        target,
		})
	}))
	return h
}
