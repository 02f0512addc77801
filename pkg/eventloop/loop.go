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

// Package eventloop runs every countermeasure handler on a single goroutine.
//
// Host events, timer callbacks and navigation signals are all posted into a
// Loop, which executes them one at a time in FIFO order. Handlers therefore
// never interleave, and code running on the loop can touch page entities and
// session state without locks.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRunning = errors.New("event loop already running")
	ErrStopped        = errors.New("event loop stopped")
)

// Timer is a cancelable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It returns true if the call prevented at
	// least one pending run of the callback.
	Stop() bool
}

// Scheduler is the part of the loop that guards and controllers depend on.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Loop is a cooperative single-goroutine executor.
type Loop struct {
	clock   clockwork.Clock
	wake    chan struct{}
	stopped chan struct{}
	// armed maps each scheduled timer callback to its deadline until the
	// callback is queued or cancelled.
	armed   map[*armedTimer]time.Time
	queue   []func()
	mu      syncutil.Mutex
	running atomic.Bool
}

// New creates a Loop using the given clock for its timers. A nil clock means
// the real wall clock.
func New(clock clockwork.Clock) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{
		clock:   clock,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		armed:   make(map[*armedTimer]time.Time),
	}
}

// Clock returns the clock backing the loop's timers.
func (l *Loop) Clock() clockwork.Clock {
	return l.clock
}

// Post queues fn to run on the loop goroutine. It never blocks, so it is
// safe to call from clock callbacks and from handlers already on the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.notify()
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do posts fn and waits until it has run.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for loop handler: %w", ctx.Err())
	case <-l.stopped:
		return ErrStopped
	}
}

// Settle waits until the loop is idle: nothing is queued and no timer is
// past its deadline without having been queued. With a fake clock this makes
// the effects of an Advance observable deterministically.
func (l *Loop) Settle(ctx context.Context) error {
	for {
		if err := l.Do(ctx, func() {}); err != nil {
			return err
		}
		if l.idle() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("settling loop: %w", ctx.Err())
		case <-time.After(time.Millisecond):
		}
	}
}

func (l *Loop) idle() bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) > 0 {
		return false
	}
	for _, deadline := range l.armed {
		if !deadline.After(now) {
			return false
		}
	}
	return true
}

// Run executes queued handlers until ctx is cancelled. It may only be
// called once per Loop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.stopped)

	log.Debug().Msg("eventloop: started")
	for {
		l.drain(ctx)

		select {
		case <-l.wake:
		case <-ctx.Done():
			log.Debug().Msg("eventloop: stopped")
			return nil
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

func (l *Loop) drain(ctx context.Context) {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		for i, fn := range batch {
			if ctx.Err() != nil {
				// put the rest back so a late Do sees ErrStopped, not a hang
				l.mu.Lock()
				l.queue = append(batch[i:], l.queue...)
				l.mu.Unlock()
				return
			}
			l.call(fn)
		}
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("eventloop: recovered panic in handler")
		}
	}()
	fn()
}

func (l *Loop) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
