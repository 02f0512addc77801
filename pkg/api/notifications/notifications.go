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

// Package notifications sends typed notifications without ever blocking the
// caller. Countermeasures run on the event loop, so a slow consumer costs a
// dropped notification rather than a stalled page.
package notifications

import (
	"encoding/json"

	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/rs/zerolog/log"
)

func sendNotification(ns chan<- models.Notification, method string, payload any) {
	if ns == nil {
		return
	}

	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("notifications: error marshalling payload")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notifications: channel full, dropping notification")
	}
}

func PageNavigated(ns chan<- models.Notification, payload models.PageNavigatedParams) {
	sendNotification(ns, models.NotificationPageNavigated, payload)
}

func SessionStarted(ns chan<- models.Notification, payload models.SessionStartedParams) {
	sendNotification(ns, models.NotificationSessionStarted, payload)
}

func SessionAborted(ns chan<- models.Notification, payload models.SessionAbortedParams) {
	sendNotification(ns, models.NotificationSessionAborted, payload)
}

func WatchdogArmed(ns chan<- models.Notification, payload models.WatchdogArmedParams) {
	sendNotification(ns, models.NotificationWatchdogArmed, payload)
}

func WatchdogExpired(ns chan<- models.Notification, payload models.WatchdogExpiredParams) {
	sendNotification(ns, models.NotificationWatchdogExpired, payload)
}

func PausePrevented(ns chan<- models.Notification, payload models.PausePreventedParams) {
	sendNotification(ns, models.NotificationPausePrevented, payload)
}

func SeekClamped(ns chan<- models.Notification, payload models.SeekClampedParams) {
	sendNotification(ns, models.NotificationSeekClamped, payload)
}

func OverlayDismissed(ns chan<- models.Notification, payload models.OverlayDismissedParams) {
	sendNotification(ns, models.NotificationOverlayDismissed, payload)
}
