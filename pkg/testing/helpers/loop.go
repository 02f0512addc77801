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
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/eventloop"
	"github.com/stretchr/testify/require"
)

// StartLoop runs an event loop on clock for the duration of the test.
func StartLoop(t *testing.T, clock clockwork.Clock) *eventloop.Loop {
	t.Helper()

	l := eventloop.New(clock)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l
}

// OnLoop runs fn on the loop and waits for it. Anything the loop goroutine
// owns must be read and written through here.
func OnLoop(t *testing.T, l *eventloop.Loop, fn func()) {
	t.Helper()
	require.NoError(t, l.Do(context.Background(), fn))
}

// EventuallyOnLoop polls cond on the loop until it holds or a second passes.
func EventuallyOnLoop(t *testing.T, l *eventloop.Loop, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		ok := false
		if err := l.Do(context.Background(), func() { ok = cond() }); err != nil {
			return false
		}
		return ok
	}, time.Second, time.Millisecond)
}

// AwaitTimers blocks until the clock has at least n pending timers.
func AwaitTimers(t *testing.T, clock *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, n))
}

// Settle waits until the loop has run everything that is due.
func Settle(t *testing.T, l *eventloop.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Settle(ctx))
}

// Advance moves clock forward by d in increments of at most step, settling
// the loop after each increment so repeating timers see every tick.
func Advance(t *testing.T, clock *clockwork.FakeClock, l *eventloop.Loop, d, step time.Duration) {
	t.Helper()
	if step <= 0 {
		step = d
	}
	for d > 0 {
		inc := min(step, d)
		clock.Advance(inc)
		Settle(t, l)
		d -= inc
	}
}
