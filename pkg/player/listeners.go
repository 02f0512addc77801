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

package player

// Listeners is an event-target style registry of listeners keyed by Event.
// It is not safe for concurrent use; callers keep it on the event loop.
type Listeners struct {
	byEvent map[Event][]*entry
}

type entry struct {
	fn      Listener
	removed bool
}

// Add registers fn for ev. The returned func removes it again.
func (ls *Listeners) Add(ev Event, fn Listener) func() {
	if ls.byEvent == nil {
		ls.byEvent = make(map[Event][]*entry)
	}
	e := &entry{fn: fn}
	ls.byEvent[ev] = append(ls.byEvent[ev], e)

	return func() {
		if e.removed {
			return
		}
		e.removed = true
		list := ls.byEvent[ev]
		for i, other := range list {
			if other == e {
				ls.byEvent[ev] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// Dispatch calls every listener registered for ev at the time of the call.
// Listeners removed by an earlier listener in the same dispatch are skipped.
func (ls *Listeners) Dispatch(ev Event) {
	snapshot := append([]*entry(nil), ls.byEvent[ev]...)
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		e.fn()
	}
}

// Len returns the number of listeners registered for ev.
func (ls *Listeners) Len(ev Event) int {
	return len(ls.byEvent[ev])
}
