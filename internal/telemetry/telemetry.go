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

// Package telemetry forwards error-level log events to a user-configured
// Sentry project. It is off unless explicitly enabled in config.
package telemetry

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/mkalinski/backdownsell/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const flushTimeout = 2 * time.Second

var ErrNoDSN = errors.New("error reporting enabled without a dsn")

// Watch URLs name what the user is watching; only their shape is kept.
var watchParamRe = regexp.MustCompile(`([?&](?:v|t|list)=)[^&#\s"]+`)

var (
	enabled      bool
	sentryWriter *sentryzerolog.Writer
	closeOnce    sync.Once
)

// scrubber strips the user's home directory and watch identifiers from
// event text. Scenario and config paths are the only paths we log.
type scrubber struct {
	home string
}

func newScrubber() scrubber {
	home, err := os.UserHomeDir()
	if err != nil {
		return scrubber{}
	}
	return scrubber{home: strings.TrimRight(home, `/\`)}
}

func (s scrubber) text(v string) string {
	if s.home != "" {
		v = strings.ReplaceAll(v, s.home+"/", "~/")
		v = strings.ReplaceAll(v, s.home+`\`, `~\`)
	}
	return watchParamRe.ReplaceAllString(v, "${1}<redacted>")
}

func (s scrubber) event(event *sentry.Event) *sentry.Event {
	event.ServerName = ""
	event.Message = s.text(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = s.text(event.Exception[i].Value)
	}
	for k, v := range event.Extra {
		if str, ok := v.(string); ok {
			event.Extra[k] = s.text(str)
		}
	}
	for k, v := range event.Tags {
		event.Tags[k] = s.text(v)
	}
	return event
}

// Init hooks Sentry into the global logger when reporting is enabled.
func Init(reportingEnabled bool, dsn, appVersion string) error {
	if !reportingEnabled {
		log.Debug().Msg("error reporting disabled")
		return nil
	}
	if dsn == "" {
		return ErrNoDSN
	}

	scrub := newScrubber()
	err := sentry.Init(sentry.ClientOptions{
		Dsn:            dsn,
		Release:        "backdownsell@" + appVersion,
		SendDefaultPII: false,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrub.event(event)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentryWriter, err = sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:       []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout: flushTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(
		helpers.LogWriter(),
		sentryWriter,
	)).With().Timestamp().Caller().Logger()

	enabled = true
	log.Info().Msg("error reporting enabled")
	return nil
}

// Close flushes pending events. Only the first call has an effect.
func Close() {
	if !enabled {
		return
	}
	closeOnce.Do(func() {
		_ = sentryWriter.Close()
		sentry.Flush(flushTimeout)
	})
}

func Enabled() bool {
	return enabled
}
