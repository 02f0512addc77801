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

package timespec

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyParseComposes verifies any well-formed token sums its parts.
func TestPropertyParseComposes(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		hasH := rapid.Bool().Draw(t, "hasHours")
		hasM := rapid.Bool().Draw(t, "hasMinutes")
		hasS := rapid.Bool().Draw(t, "hasSeconds")
		if !hasH && !hasM {
			hasS = true
		}
		h := rapid.IntRange(0, 99).Draw(t, "hours")
		m := rapid.IntRange(0, 59).Draw(t, "minutes")
		s := rapid.IntRange(0, 59).Draw(t, "seconds")
		suffix := rapid.Bool().Draw(t, "suffix")

		var b strings.Builder
		want := 0
		if hasH {
			fmt.Fprintf(&b, "%dh", h)
			want += h * 3600
		}
		if hasM {
			fmt.Fprintf(&b, "%dm", m)
			want += m * 60
		}
		if hasS {
			fmt.Fprintf(&b, "%d", s)
			if suffix {
				b.WriteString("s")
			}
			want += s
		}

		got := Parse(b.String())
		if got.TotalSeconds != want {
			t.Fatalf("Parse(%q) = %d, want %d", b.String(), got.TotalSeconds, want)
		}
	})
}

// TestPropertyParseNeverNegative verifies arbitrary input never yields a
// negative total.
func TestPropertyParseNeverNegative(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		token := rapid.String().Draw(t, "token")
		if got := Parse(token); got.TotalSeconds < 0 {
			t.Fatalf("Parse(%q) = %d", token, got.TotalSeconds)
		}
	})
}

// TestPropertyParseRejectsLetters verifies tokens containing characters
// outside the grammar resolve to zero.
func TestPropertyParseRejectsLetters(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`[0-9]{0,4}`).Draw(t, "prefix")
		bad := rapid.SampledFrom([]string{"x", "q", " ", ":", "-", "."}).Draw(t, "bad")
		token := prefix + bad
		if got := Parse(token); !got.IsZero() {
			t.Fatalf("Parse(%q) = %d, want 0", token, got.TotalSeconds)
		}
	})
}
