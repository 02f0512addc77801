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

// Package timespec parses the compact start-time token carried in watch
// links, such as "1h2m3s", "90s", "5m" or "42".
package timespec

import (
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// QueryKey is the URL query parameter holding the token.
const QueryKey = "t"

var tokenRe = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s?)?$`)

// TimeSpec is a parsed start time. The zero value means "no target".
type TimeSpec struct {
	TotalSeconds int
}

// IsZero reports whether the spec requests no seek enforcement.
func (ts TimeSpec) IsZero() bool {
	return ts.TotalSeconds == 0
}

func (ts TimeSpec) Duration() time.Duration {
	return time.Duration(ts.TotalSeconds) * time.Second
}

func (ts TimeSpec) String() string {
	return ts.Duration().String()
}

var (
	ErrIncompatible = errors.New("incompatible start time value")
	// ErrOutOfRange covers digit groups, or their sum, that do not fit an
	// int. Parse maps it to the zero TimeSpec like any other bad token.
	ErrOutOfRange = errors.New("start time out of range")
)

// Parse converts a token to a TimeSpec. Tokens that do not match the
// grammar resolve to the zero TimeSpec; they are never an error because the
// token is user supplied and failing here must not stand in the way of
// playback.
func Parse(token string) TimeSpec {
	ts, err := parse(token)
	if err != nil {
		log.Warn().Str("token", token).Msgf("timespec: %v", err)
		return TimeSpec{}
	}
	return ts
}

// Valid reports whether token parses without falling back to zero.
func Valid(token string) bool {
	_, err := parse(token)
	return err == nil
}

func parse(token string) (TimeSpec, error) {
	m := tokenRe.FindStringSubmatch(token)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return TimeSpec{}, ErrIncompatible
	}

	hours, okH := atoi(m[1])
	minutes, okM := atoi(m[2])
	seconds, okS := atoi(m[3])
	if !okH || !okM || !okS {
		return TimeSpec{}, ErrOutOfRange
	}

	total, ok := sum(hours, minutes, seconds)
	if !ok {
		return TimeSpec{}, ErrOutOfRange
	}

	return TimeSpec{TotalSeconds: total}, nil
}

// FromURL parses the start time token of a page URL. A URL without the
// parameter yields the zero TimeSpec without logging.
func FromURL(rawURL string) TimeSpec {
	u, err := url.Parse(rawURL)
	if err != nil {
		log.Warn().Err(err).Msg("timespec: unparsable page url")
		return TimeSpec{}
	}

	q := u.Query()
	if !q.Has(QueryKey) {
		return TimeSpec{}
	}
	return Parse(q.Get(QueryKey))
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func sum(hours, minutes, seconds int) (int, bool) {
	if hours > math.MaxInt/3600 {
		return 0, false
	}
	total := hours * 3600

	if minutes > (math.MaxInt-total)/60 {
		return 0, false
	}
	total += minutes * 60

	if seconds > math.MaxInt-total {
		return 0, false
	}
	return total + seconds, true
}
