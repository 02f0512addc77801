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

package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSendNotificationNonBlocking verifies a full channel never blocks the
// sender.
func TestSendNotificationNonBlocking(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification)

	done := make(chan struct{})
	go func() {
		PausePrevented(ns, models.PausePreventedParams{SessionID: "s1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("send blocked on full channel")
	}
}

func TestSendNotificationPayload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	SeekClamped(ns, models.SeekClampedParams{SessionID: "s1", From: 5, To: 10})

	n := <-ns
	assert.Equal(t, models.NotificationSeekClamped, n.Method)

	var got models.SeekClampedParams
	require.NoError(t, json.Unmarshal(n.Params, &got))
	assert.Equal(t, "s1", got.SessionID)
	assert.InDelta(t, 5.0, got.From, 0)
	assert.InDelta(t, 10.0, got.To, 0)
}

func TestSendNotificationNilChannel(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		WatchdogExpired(nil, models.WatchdogExpiredParams{SessionID: "s1", Reason: models.ExpiryReasonTimeout})
	})
}

func TestSendNotificationOmitsEmptyError(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	OverlayDismissed(ns, models.OverlayDismissedParams{SessionID: "s1"})

	n := <-ns
	assert.NotContains(t, string(n.Params), "error")
}
