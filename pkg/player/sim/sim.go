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

// Package sim is an in-memory watch page. It stands in for the host page in
// the scenario runner and in tests, and behaves like a browser media element
// closely enough to exercise every countermeasure.
package sim

import (
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/rs/zerolog/log"
)

// Video is a simulated media element. It starts paused at position 0.
type Video struct {
	// PlayErr, when set, makes Play refuse like an autoplay policy would.
	PlayErr   error
	listeners player.Listeners
	seeks     []float64
	position  float64
	plays     int
	paused    bool
}

func NewVideo() *Video {
	return &Video{paused: true}
}

func (v *Video) Paused() bool         { return v.paused }
func (v *Video) CurrentTime() float64 { return v.position }

// SetCurrentTime moves the playhead and records the request.
func (v *Video) SetCurrentTime(seconds float64) {
	v.seeks = append(v.seeks, seconds)
	v.position = seconds
}

// Play records the request and, unless refused, resumes playback and fires
// a play event when the video was paused.
func (v *Video) Play() error {
	v.plays++
	if v.PlayErr != nil {
		return v.PlayErr
	}
	if v.paused {
		v.paused = false
		v.listeners.Dispatch(player.EventPlay)
	}
	return nil
}

func (v *Video) AddListener(ev player.Event, fn player.Listener) func() {
	return v.listeners.Add(ev, fn)
}

// Pause is a platform-initiated pause.
func (v *Video) Pause() {
	if v.paused {
		return
	}
	v.paused = true
	v.listeners.Dispatch(player.EventPause)
}

// Tick reports a new playhead position, as the platform does while playing
// or when it jumps the position itself.
func (v *Video) Tick(position float64) {
	v.position = position
	v.listeners.Dispatch(player.EventTimeUpdate)
}

// PlayCount is the number of Play requests received.
func (v *Video) PlayCount() int { return v.plays }

// Seeks lists every position passed to SetCurrentTime.
func (v *Video) Seeks() []float64 { return append([]float64(nil), v.seeks...) }

// ListenerCount reports how many listeners are registered for ev.
func (v *Video) ListenerCount(ev player.Event) int { return v.listeners.Len(ev) }

// Overlay is a simulated cued-video overlay.
type Overlay struct {
	ClickErr error
	clicks   int
	visible  bool
}

func (o *Overlay) Visible() bool { return o.visible }
func (o *Overlay) Show()         { o.visible = true }
func (o *Overlay) Hide()         { o.visible = false }

// Click dismisses the overlay unless ClickErr is set.
func (o *Overlay) Click() error {
	o.clicks++
	if o.ClickErr != nil {
		return o.ClickErr
	}
	o.visible = false
	return nil
}

func (o *Overlay) Clicks() int { return o.clicks }

// Page holds the entities of one simulated tab.
type Page struct {
	overlay *Overlay
	url     string
	videos  []*Video
}

func NewPage(url string) *Page {
	return &Page{url: url}
}

// FindVideo returns the page's video. Watch pages carry exactly one; any
// other count is reported as not found.
func (p *Page) FindVideo() (player.Video, bool) {
	switch len(p.videos) {
	case 1:
		return p.videos[0], true
	case 0:
		log.Debug().Msg("sim: no video on page")
		return nil, false
	default:
		log.Error().Int("count", len(p.videos)).Msg("sim: expected exactly one video on page")
		return nil, false
	}
}

func (p *Page) FindOverlay() (player.Overlay, bool) {
	if p.overlay == nil {
		return nil, false
	}
	return p.overlay, true
}

func (p *Page) Location() string { return p.url }

// Navigate changes the page URL without touching its entities, the way an
// in-app navigation reuses the player.
func (p *Page) Navigate(url string) { p.url = url }

func (p *Page) AddVideo(v *Video) { p.videos = append(p.videos, v) }

func (p *Page) RemoveVideos() { p.videos = nil }

func (p *Page) SetOverlay(o *Overlay) { p.overlay = o }

// Video returns the first video, or nil.
func (p *Page) Video() *Video {
	if len(p.videos) == 0 {
		return nil
	}
	return p.videos[0]
}

func (p *Page) Overlay() *Overlay { return p.overlay }
