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

// Package watchdog bounds a session's countermeasures to one grace window.
//
// A Controller activates every guard of a session together and tears them
// all down from a single expiry timer, so no guard can outlive another.
// Controllers are single use: a new session gets a new Controller.
package watchdog

import (
	"time"

	"github.com/google/uuid"
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/api/notifications"
	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/mkalinski/backdownsell/pkg/eventloop"
	"github.com/mkalinski/backdownsell/pkg/guards"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/mkalinski/backdownsell/pkg/timespec"
	"github.com/rs/zerolog/log"
)

// State of a Controller. It only moves forward.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Options configures a Controller. Zero durations fall back to defaults.
type Options struct {
	Notify              chan<- models.Notification
	Grace               time.Duration
	OverlayPollInterval time.Duration
	OverlayClickDelay   time.Duration
}

func (o Options) withDefaults() Options {
	if o.Grace <= 0 {
		o.Grace = config.DefaultGrace
	}
	if o.OverlayPollInterval <= 0 {
		o.OverlayPollInterval = config.DefaultOverlayPollInterval
	}
	if o.OverlayClickDelay <= 0 {
		o.OverlayClickDelay = config.DefaultOverlayClickDelay
	}
	return o
}

// Controller owns the guard handles of one session. All methods must be
// called on the event loop.
type Controller struct {
	sched   eventloop.Scheduler
	expiry  eventloop.Timer
	id      string
	names   []string
	handles []guards.Handle
	opts    Options
	state   State
}

func New(sched eventloop.Scheduler, opts Options) *Controller {
	return &Controller{
		sched: sched,
		opts:  opts.withDefaults(),
		id:    uuid.NewString(),
	}
}

// ID identifies the session this controller guards.
func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) State() State {
	return c.state
}

// Guards lists the names of the guards armed by this controller.
func (c *Controller) Guards() []string {
	return append([]string(nil), c.names...)
}

// Arm activates the standard guard set against v. The overlay guard is
// only included when overlay is non-nil.
func (c *Controller) Arm(v player.Video, overlay player.Overlay, spec timespec.TimeSpec) {
	c.ArmGuards(v, c.standardGuards(overlay, spec)...)
}

// ArmGuards activates gs against v and starts the expiry timer. Arming a
// controller twice, or with no guards, panics.
func (c *Controller) ArmGuards(v player.Video, gs ...guards.Guard) {
	if c.state != StateIdle {
		panic("watchdog: controller armed twice")
	}
	if len(gs) == 0 {
		panic("watchdog: no guards to arm")
	}

	c.state = StateArmed
	for _, g := range gs {
		c.handles = append(c.handles, g.Activate(v))
		c.names = append(c.names, g.Name())
	}
	c.expiry = c.sched.AfterFunc(c.opts.Grace, func() {
		c.expire(models.ExpiryReasonTimeout)
	})

	log.Info().
		Str("session", c.id).
		Strs("guards", c.names).
		Dur("grace", c.opts.Grace).
		Msg("watchdog: armed")
	notifications.WatchdogArmed(c.opts.Notify, models.WatchdogArmedParams{
		SessionID: c.id,
		Grace:     c.opts.Grace.String(),
		Guards:    c.Guards(),
	})
}

// Retire ends the grace window early. It is a no-op unless the controller
// is armed, so it may race the expiry timer safely.
func (c *Controller) Retire() {
	c.expire(models.ExpiryReasonSuperseded)
}

func (c *Controller) expire(reason string) {
	if c.state != StateArmed {
		return
	}
	c.state = StateExpired

	c.expiry.Stop()
	for _, h := range c.handles {
		h.Deactivate()
	}
	c.handles = nil

	log.Info().Str("session", c.id).Str("reason", reason).Msg("watchdog: expired")
	notifications.WatchdogExpired(c.opts.Notify, models.WatchdogExpiredParams{
		SessionID: c.id,
		Reason:    reason,
	})
}

func (c *Controller) standardGuards(overlay player.Overlay, spec timespec.TimeSpec) []guards.Guard {
	rep := guards.Reporter{Notify: c.opts.Notify, SessionID: c.id}
	gs := []guards.Guard{
		&guards.PauseGuard{Reporter: rep},
		&guards.SeekGuard{Reporter: rep, Target: spec},
	}
	if overlay != nil {
		gs = append(gs, &guards.OverlayGuard{
			Reporter:     rep,
			Overlay:      overlay,
			Sched:        c.sched,
			PollInterval: c.opts.OverlayPollInterval,
			ClickDelay:   c.opts.OverlayClickDelay,
		})
	}
	return gs
}
