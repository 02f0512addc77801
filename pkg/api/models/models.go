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

// Package models holds the notification envelope and payloads exchanged
// between the page, the countermeasures and any subscribers.
package models

import "encoding/json"

const (
	NotificationPageNavigated    = "page.navigated"
	NotificationSessionStarted   = "session.started"
	NotificationSessionAborted   = "session.aborted"
	NotificationWatchdogArmed    = "watchdog.armed"
	NotificationWatchdogExpired  = "watchdog.expired"
	NotificationPausePrevented   = "guard.pause_prevented"
	NotificationSeekClamped      = "guard.seek_clamped"
	NotificationOverlayDismissed = "guard.overlay_dismissed"
)

const (
	ExpiryReasonTimeout    = "timeout"
	ExpiryReasonSuperseded = "superseded"
)

const SessionAbortReasonNoVideo = "no_video"

type Notification struct {
	Method string
	Params json.RawMessage
}

type PageNavigatedParams struct {
	URL string `json:"url"`
}

type SessionStartedParams struct {
	SessionID    string `json:"sessionId"`
	URL          string `json:"url"`
	StartSeconds int    `json:"startSeconds"`
	Deferred     bool   `json:"deferred"`
	HasOverlay   bool   `json:"hasOverlay"`
}

type SessionAbortedParams struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

type WatchdogArmedParams struct {
	SessionID string   `json:"sessionId"`
	Grace     string   `json:"grace"`
	Guards    []string `json:"guards"`
}

type WatchdogExpiredParams struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

type PausePreventedParams struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error,omitempty"`
}

type SeekClampedParams struct {
	SessionID string  `json:"sessionId"`
	From      float64 `json:"from"`
	To        float64 `json:"to"`
}

type OverlayDismissedParams struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error,omitempty"`
}

// NotificationObject is the JSON-RPC 2.0 notification pushed to API
// clients for every Notification.
type NotificationObject struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type SessionStatus struct {
	ID     string   `json:"id"`
	State  string   `json:"state"`
	Guards []string `json:"guards"`
}

type StatusResponse struct {
	Session *SessionStatus `json:"session"`
	Version string         `json:"version"`
	URL     string         `json:"url"`
	Waiting bool           `json:"waiting"`
}
