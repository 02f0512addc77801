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

// Package player defines the page entities the countermeasures act on.
//
// The host page owns every value behind these interfaces. Implementations
// are expected to be driven from the event loop: listeners are invoked
// synchronously on the loop goroutine and mutation requests return at once.
package player

// Event names a playback entity notification.
type Event string

const (
	EventPlay       Event = "play"
	EventPause      Event = "pause"
	EventTimeUpdate Event = "timeupdate"
)

// Listener is called when an Event fires.
type Listener func()

// Video is the single playback entity of a watch page.
type Video interface {
	Paused() bool
	// CurrentTime is the playback position in seconds.
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	// Play requests playback. A non-nil error means the platform refused,
	// for example because of an autoplay policy.
	Play() error
	// AddListener registers fn for ev and returns a func that removes it.
	// The remove func is safe to call more than once.
	AddListener(ev Event, fn Listener) (remove func())
}

// Overlay is the blocking element rendered over a cued video.
type Overlay interface {
	Visible() bool
	// Click simulates a user click on the overlay's dismiss control.
	Click() error
}

// Page locates entities for the current page state.
type Page interface {
	FindVideo() (Video, bool)
	FindOverlay() (Overlay, bool)
	// Location is the current page URL.
	Location() string
}
