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

package eventloop

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/helpers/syncutil"
)

// armedTimer is one pending clock registration of a loop timer.
type armedTimer struct {
	inner clockwork.Timer
}

// arm registers fn to be queued on the loop after d.
func (l *Loop) arm(d time.Duration, fn func()) *armedTimer {
	at := &armedTimer{}

	l.mu.Lock()
	l.armed[at] = l.clock.Now().Add(d)
	l.mu.Unlock()

	at.inner = l.clock.AfterFunc(d, func() {
		l.mu.Lock()
		_, ok := l.armed[at]
		if ok {
			delete(l.armed, at)
			l.queue = append(l.queue, fn)
		}
		l.mu.Unlock()
		if ok {
			l.notify()
		}
	})
	return at
}

// disarm cancels a registration that has not been queued yet.
func (l *Loop) disarm(at *armedTimer) {
	l.mu.Lock()
	delete(l.armed, at)
	l.mu.Unlock()
	if at.inner != nil {
		at.inner.Stop()
	}
}

type onceTimer struct {
	loop    *Loop
	at      *armedTimer
	stopped atomic.Bool
}

// AfterFunc runs fn on the loop once d has elapsed. A Stop that lands after
// the clock fired but before the loop got to the callback still wins.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &onceTimer{loop: l}
	t.at = l.arm(d, func() {
		if t.stopped.Swap(true) {
			return
		}
		fn()
	})
	return t
}

func (t *onceTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.loop.disarm(t.at)
	return true
}

type repeatTimer struct {
	loop    *Loop
	fn      func()
	at      *armedTimer
	mu      syncutil.Mutex
	every   time.Duration
	stopped atomic.Bool
}

// Every runs fn on the loop every d until stopped. The next run is scheduled
// after the previous one returns, so runs never pile up behind a slow loop.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &repeatTimer{
		loop:  l,
		fn:    fn,
		every: d,
	}
	t.schedule()
	return t
}

func (t *repeatTimer) schedule() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped.Load() {
		return
	}
	t.at = t.loop.arm(t.every, t.fire)
}

func (t *repeatTimer) fire() {
	if t.stopped.Load() {
		return
	}
	t.fn()
	t.schedule()
}

func (t *repeatTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.at != nil {
		t.loop.disarm(t.at)
	}
	return true
}
