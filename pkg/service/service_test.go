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

package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/player/sim"
	"github.com/mkalinski/backdownsell/pkg/testing/helpers"
	"github.com/mkalinski/backdownsell/pkg/watchdog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	svc   *Service
	page  *sim.Page
	clock *clockwork.FakeClock
	sub   <-chan models.Notification
}

func newFixture(t *testing.T, url, toml string) *fixture {
	t.Helper()

	cfg := helpers.NewTestConfig(t, toml)
	page := sim.NewPage(url)
	page.AddVideo(sim.NewVideo())
	clock := clockwork.NewFakeClock()

	svc, err := Start(context.Background(), cfg, page, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop() })

	sub, _ := svc.Subscribe(100)
	return &fixture{svc: svc, page: page, clock: clock, sub: sub}
}

func (f *fixture) do(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, f.svc.Do(context.Background(), fn))
}

func (f *fixture) advance(t *testing.T, d time.Duration) {
	t.Helper()
	f.clock.Advance(d)
	require.NoError(t, f.svc.Settle(context.Background()))
}

func (f *fixture) next(t *testing.T) models.Notification {
	t.Helper()
	select {
	case n := <-f.sub:
		return n
	case <-time.After(time.Second):
		require.FailNow(t, "no notification")
	}
	return models.Notification{}
}

func TestStartRequiresConfigAndPage(t *testing.T) {
	t.Parallel()

	_, err := Start(context.Background(), nil, sim.NewPage(""), nil)
	require.Error(t, err)

	cfg := helpers.NewTestConfig(t, "")
	_, err = Start(context.Background(), cfg, nil, nil)
	require.Error(t, err)
}

func TestNavigateArmsOnPlayAndExpiresAfterConfiguredGrace(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "https://www.youtube.com/watch?v=x&t=10s", "[watchdog]\ngrace = \"2s\"\n")

	require.NoError(t, f.svc.Navigate(context.Background()))
	assert.Equal(t, models.NotificationPageNavigated, f.next(t).Method)

	c, err := f.svc.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, c, "waiting for play")

	f.do(t, func() { require.NoError(t, f.page.Video().Play()) })
	assert.Equal(t, models.NotificationSessionStarted, f.next(t).Method)
	assert.Equal(t, models.NotificationWatchdogArmed, f.next(t).Method)

	f.do(t, func() { f.page.Video().Tick(3) })
	assert.Equal(t, models.NotificationSeekClamped, f.next(t).Method)

	c, err = f.svc.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c)

	f.advance(t, 2*time.Second)
	assert.Equal(t, models.NotificationWatchdogExpired, f.next(t).Method)

	f.do(t, func() {
		assert.Equal(t, watchdog.StateExpired, c.State())
		assert.Equal(t, []float64{10}, f.page.Video().Seeks())
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "https://www.youtube.com/watch?v=x", "")

	st, err := f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Session)
	assert.False(t, st.Waiting)
	assert.Equal(t, "https://www.youtube.com/watch?v=x", st.URL)

	require.NoError(t, f.svc.Navigate(context.Background()))
	st, err = f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Waiting)

	f.do(t, func() { require.NoError(t, f.page.Video().Play()) })
	st, err = f.svc.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Session)
	assert.Equal(t, "armed", st.Session.State)
	assert.Equal(t, []string{"pause", "seek"}, st.Session.Guards)
	assert.False(t, st.Waiting)
}

func TestNotificationsQueueOrdersAfterLoopOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "https://www.youtube.com/watch?v=x", "")

	require.NoError(t, f.svc.Navigate(context.Background()))
	f.svc.Notifications() <- models.Notification{Method: "test.marker"}

	assert.Equal(t, models.NotificationPageNavigated, f.next(t).Method)
	assert.Equal(t, "test.marker", f.next(t).Method)
}

func TestStopRetiresActiveSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "https://www.youtube.com/watch?v=x", "")
	f.do(t, func() { require.NoError(t, f.page.Video().Play()) })
	require.NoError(t, f.svc.Navigate(context.Background()))

	c, err := f.svc.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c)

	require.NoError(t, f.svc.Stop())
	require.NoError(t, f.svc.Stop())

	<-f.svc.Done()
	assert.Equal(t, watchdog.StateExpired, c.State())
	assert.Zero(t, f.page.Video().ListenerCount("pause"))

	assert.ErrorIs(t, f.svc.Navigate(context.Background()), ErrNotRunning)
}

func TestParentContextCancelStopsLoop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	page := sim.NewPage("https://www.youtube.com/watch?v=x")
	svc, err := Start(ctx, helpers.NewTestConfig(t, ""), page, clockwork.NewFakeClock())
	require.NoError(t, err)

	cancel()
	require.NoError(t, svc.Stop())
	assert.ErrorIs(t, svc.Navigate(context.Background()), ErrNotRunning)
}
