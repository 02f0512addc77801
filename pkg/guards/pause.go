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
	"github.com/rs/zerolog/log"
)

// PauseGuard resumes playback whenever the video pauses.
type PauseGuard struct {
	Reporter
}

func (*PauseGuard) Name() string { return NamePause }

func (g *PauseGuard) Activate(v player.Video) Handle {
	h := &handle{}
	h.add(v.AddListener(player.EventPause, func() {
		if !h.active() {
			return
		}

		params := models.PausePreventedParams{SessionID: g.SessionID}
		if err := v.Play(); err != nil {
			log.Warn().Err(err).Str("session", g.SessionID).Msg("guards: cannot play immediately after pause")
			params.Error = err.Error()
		} else {
			log.Debug().Str("session", g.SessionID).Msg("guards: resumed forced pause")
		}
		notifications.PausePrevented(g.Notify, params)
	}))
	return h
}
