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

// Package session re-arms the watchdog on every page navigation.
//
// Each navigation supersedes the previous session completely: its pending
// play observer is removed and its controller retired before anything of
// the new page is looked at. A token bumped per navigation guards deferred
// callbacks against acting for a session that is no longer current.
package session

import (
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/api/notifications"
	"github.com/mkalinski/backdownsell/pkg/eventloop"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/mkalinski/backdownsell/pkg/timespec"
	"github.com/mkalinski/backdownsell/pkg/watchdog"
	"github.com/rs/zerolog/log"
)

// Orchestrator owns the page-lifetime session state. All methods must run
// on the event loop.
type Orchestrator struct {
	page          player.Page
	sched         eventloop.Scheduler
	current       *watchdog.Controller
	cancelPending func()
	opts          watchdog.Options
	token         uint64
}

func New(page player.Page, sched eventloop.Scheduler, opts watchdog.Options) *Orchestrator {
	return &Orchestrator{
		page:  page,
		sched: sched,
		opts:  opts,
	}
}

// OnNavigate starts a new session for the page as it is now. The initial
// page load counts as a navigation.
func (o *Orchestrator) OnNavigate() {
	o.token++
	token := o.token
	o.supersede()

	url := o.page.Location()
	notifications.PageNavigated(o.opts.Notify, models.PageNavigatedParams{URL: url})

	v, ok := o.page.FindVideo()
	if !ok {
		log.Debug().Str("url", url).Msg("session: no video on page, skipping")
		notifications.SessionAborted(o.opts.Notify, models.SessionAbortedParams{
			URL:    url,
			Reason: models.SessionAbortReasonNoVideo,
		})
		return
	}

	var overlay player.Overlay
	if found, ok := o.page.FindOverlay(); ok {
		overlay = found
	}
	spec := timespec.FromURL(url)

	if !v.Paused() {
		o.arm(v, overlay, spec, url, false)
		return
	}

	log.Debug().Str("url", url).Msg("session: video paused, waiting for playback")
	var remove func()
	remove = v.AddListener(player.EventPlay, func() {
		remove()
		if token != o.token {
			return
		}
		o.cancelPending = nil
		o.arm(v, overlay, spec, url, true)
	})
	o.cancelPending = remove
}

// Current returns the controller of the current session, or nil when the
// session has not armed (yet).
func (o *Orchestrator) Current() *watchdog.Controller {
	return o.current
}

// Waiting reports whether the current session is waiting for playback.
func (o *Orchestrator) Waiting() bool {
	return o.cancelPending != nil
}

// Close retires whatever the current session holds. Used at shutdown.
func (o *Orchestrator) Close() {
	o.token++
	o.supersede()
}

func (o *Orchestrator) supersede() {
	if o.cancelPending != nil {
		o.cancelPending()
		o.cancelPending = nil
	}
	if o.current != nil {
		o.current.Retire()
		o.current = nil
	}
}

func (o *Orchestrator) arm(
	v player.Video,
	overlay player.Overlay,
	spec timespec.TimeSpec,
	url string,
	deferred bool,
) {
	c := watchdog.New(o.sched, o.opts)
	o.current = c

	log.Info().
		Str("session", c.ID()).
		Str("url", url).
		Stringer("start", spec).
		Bool("deferred", deferred).
		Msg("session: arming watchdog")
	notifications.SessionStarted(o.opts.Notify, models.SessionStartedParams{
		SessionID:    c.ID(),
		URL:          url,
		StartSeconds: spec.TotalSeconds,
		Deferred:     deferred,
		HasOverlay:   overlay != nil,
	})

	c.Arm(v, overlay, spec)
}
