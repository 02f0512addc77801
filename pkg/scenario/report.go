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

package scenario

import (
	"fmt"
	"io"
	"slices"

	"github.com/mkalinski/backdownsell/pkg/api/models"
)

// Report is the activity observed during one run, in delivery order.
type Report struct {
	Name          string
	Notifications []models.Notification
	Dropped       int64
}

// Methods lists the notification methods in order.
func (r *Report) Methods() []string {
	methods := make([]string, len(r.Notifications))
	for i, n := range r.Notifications {
		methods[i] = n.Method
	}
	return methods
}

func (r *Report) Count(method string) int {
	n := 0
	for _, notif := range r.Notifications {
		if notif.Method == method {
			n++
		}
	}
	return n
}

// Counts tallies notifications per method.
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, n := range r.Notifications {
		counts[n.Method]++
	}
	return counts
}

// Write prints one line per notification followed by a per-method summary.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "scenario: %s\n", r.Name); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	for i, n := range r.Notifications {
		params := string(n.Params)
		if params == "" {
			params = "{}"
		}
		if _, err := fmt.Fprintf(w, "%3d  %-24s %s\n", i+1, n.Method, params); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	counts := r.Counts()
	methods := make([]string, 0, len(counts))
	for m := range counts {
		methods = append(methods, m)
	}
	slices.Sort(methods)

	if _, err := fmt.Fprintln(w, "summary:"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	for _, m := range methods {
		if _, err := fmt.Fprintf(w, "  %-24s %d\n", m, counts[m]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if r.Dropped > 0 {
		if _, err := fmt.Fprintf(w, "  dropped                  %d\n", r.Dropped); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
