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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/eventloop"
	"github.com/mkalinski/backdownsell/pkg/player/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPoll  = 250 * time.Millisecond
	testDelay = 500 * time.Millisecond
)

type overlayFixture struct {
	t       *testing.T
	clock   *clockwork.FakeClock
	loop    *eventloop.Loop
	overlay *sim.Overlay
	ns      chan models.Notification
}

func newOverlayFixture(t *testing.T) *overlayFixture {
	t.Helper()

	clock := clockwork.NewFakeClock()
	l := eventloop.New(clock)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})

	return &overlayFixture{
		t:       t,
		clock:   clock,
		loop:    l,
		overlay: &sim.Overlay{},
		ns:      make(chan models.Notification, 8),
	}
}

func (f *overlayFixture) do(fn func()) {
	f.t.Helper()
	require.NoError(f.t, f.loop.Do(context.Background(), fn))
}

func (f *overlayFixture) activate() Handle {
	f.t.Helper()
	g := &OverlayGuard{
		Reporter:     Reporter{Notify: f.ns, SessionID: "s1"},
		Overlay:      f.overlay,
		Sched:        f.loop,
		PollInterval: testPoll,
		ClickDelay:   testDelay,
	}
	var h Handle
	f.do(func() { h = g.Activate(nil) })
	return h
}

// step waits for the next timer to be registered and advances to it.
func (f *overlayFixture) step(d time.Duration) {
	f.t.Helper()
	require.NoError(f.t, f.clock.BlockUntilContext(context.Background(), 1))
	f.clock.Advance(d)
}

func (f *overlayFixture) clicks() int {
	f.t.Helper()
	var n int
	f.do(func() { n = f.overlay.Clicks() })
	return n
}

func (f *overlayFixture) waitClicks(want int) {
	f.t.Helper()
	require.Eventually(f.t, func() bool {
		var n int
		if err := f.loop.Do(context.Background(), func() { n = f.overlay.Clicks() }); err != nil {
			return false
		}
		return n == want
	}, time.Second, time.Millisecond)
}

func TestOverlayGuardClicksOnceAfterDelay(t *testing.T) {
	t.Parallel()

	f := newOverlayFixture(t)
	h := f.activate()
	defer f.do(h.Deactivate)

	// hidden at the first tick; wait for the poll to re-arm
	f.step(testPoll)
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))

	f.do(f.overlay.Show)
	f.step(testPoll)

	// the click timer replaces the poll timer
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))
	f.clock.Advance(testDelay - time.Millisecond)
	assert.Equal(t, 0, f.clicks())

	f.clock.Advance(time.Millisecond)
	f.waitClicks(1)

	n := <-f.ns
	assert.Equal(t, models.NotificationOverlayDismissed, n.Method)

	// polling has ended, so a new appearance is left alone
	f.do(f.overlay.Show)
	f.clock.Advance(10 * testPoll)
	assert.Equal(t, 1, f.clicks())
}

func TestOverlayGuardSecondVisibilityDoesNotReschedule(t *testing.T) {
	t.Parallel()

	f := newOverlayFixture(t)
	h := f.activate()
	defer f.do(h.Deactivate)

	f.do(f.overlay.Show)
	f.step(testPoll)

	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))
	f.do(func() {
		f.overlay.Hide()
		f.overlay.Show()
	})
	f.clock.Advance(testPoll)
	f.clock.Advance(testDelay)
	f.waitClicks(1)

	f.clock.Advance(10 * testDelay)
	assert.Equal(t, 1, f.clicks())
}

func TestOverlayGuardDeactivateCancelsPendingClick(t *testing.T) {
	t.Parallel()

	f := newOverlayFixture(t)
	h := f.activate()

	f.do(f.overlay.Show)
	f.step(testPoll)
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))

	f.clock.Advance(testDelay / 2)
	f.do(h.Deactivate)
	f.clock.Advance(testDelay)

	assert.Equal(t, 0, f.clicks())
	assert.NotPanics(t, func() { f.do(h.Deactivate) })
}

func TestOverlayGuardDeactivateWhilePolling(t *testing.T) {
	t.Parallel()

	f := newOverlayFixture(t)
	h := f.activate()
	f.step(testPoll)

	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))
	f.do(h.Deactivate)
	f.do(f.overlay.Show)
	f.clock.Advance(10 * testPoll)

	assert.Equal(t, 0, f.clicks())
}

func TestOverlayGuardDeactivateAfterClick(t *testing.T) {
	t.Parallel()

	f := newOverlayFixture(t)
	h := f.activate()

	f.do(f.overlay.Show)
	f.step(testPoll)
	f.step(testDelay)
	f.waitClicks(1)

	assert.NotPanics(t, func() { f.do(h.Deactivate) })
	assert.Equal(t, 1, f.clicks())
}

func TestOverlayGuardClickRejected(t *testing.T) {
	t.Parallel()

	f := newOverlayFixture(t)
	f.overlay.ClickErr = errors.New("element detached")
	h := f.activate()
	defer f.do(h.Deactivate)

	f.do(f.overlay.Show)
	f.step(testPoll)
	f.step(testDelay)
	f.waitClicks(1)

	n := <-f.ns
	assert.Contains(t, string(n.Params), "element detached")
}
