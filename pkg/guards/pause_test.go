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
	"errors"
	"testing"

	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/mkalinski/backdownsell/pkg/player/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func playingVideo(t *testing.T) *sim.Video {
	t.Helper()
	v := sim.NewVideo()
	require.NoError(t, v.Play())
	return v
}

func TestPauseGuardReplaysOncePerPause(t *testing.T) {
	t.Parallel()

	v := playingVideo(t)
	g := &PauseGuard{}
	h := g.Activate(v)

	v.Pause()
	assert.False(t, v.Paused())
	assert.Equal(t, 2, v.PlayCount())

	v.Pause()
	assert.False(t, v.Paused())
	assert.Equal(t, 3, v.PlayCount())

	h.Deactivate()
	v.Pause()
	assert.True(t, v.Paused())
	assert.Equal(t, 3, v.PlayCount(), "no play after deactivate")
	assert.Equal(t, 0, v.ListenerCount(player.EventPause))
}

func TestPauseGuardPlayRejected(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	v := playingVideo(t)
	v.PlayErr = errors.New("NotAllowedError")
	g := &PauseGuard{Reporter: Reporter{Notify: ns, SessionID: "s1"}}
	h := g.Activate(v)
	defer h.Deactivate()

	assert.NotPanics(t, v.Pause)
	assert.True(t, v.Paused())

	n := <-ns
	assert.Equal(t, models.NotificationPausePrevented, n.Method)
	assert.Contains(t, string(n.Params), "NotAllowedError")
}

func TestPauseGuardReports(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 4)
	v := playingVideo(t)
	h := (&PauseGuard{Reporter: Reporter{Notify: ns, SessionID: "s1"}}).Activate(v)
	defer h.Deactivate()

	v.Pause()

	require.Len(t, ns, 1)
	n := <-ns
	assert.Equal(t, models.NotificationPausePrevented, n.Method)
	assert.NotContains(t, string(n.Params), "error")
}

func TestPauseGuardDeactivateTwice(t *testing.T) {
	t.Parallel()

	v := playingVideo(t)
	h := (&PauseGuard{}).Activate(v)

	h.Deactivate()
	assert.NotPanics(t, h.Deactivate)
	assert.Equal(t, 0, v.ListenerCount(player.EventPause))
}
