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

// Package service wires the event loop, the activity broker and the
// session orchestrator together for one page.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/mkalinski/backdownsell/pkg/eventloop"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/mkalinski/backdownsell/pkg/service/broker"
	"github.com/mkalinski/backdownsell/pkg/session"
	"github.com/mkalinski/backdownsell/pkg/watchdog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// NotificationQueueSize bounds the activity queue feeding the broker.
// Producers never block on it; overflow is logged and dropped.
const NotificationQueueSize = 256

const stopTimeout = 2 * time.Second

var ErrNotRunning = errors.New("service not running")

type Service struct {
	page   player.Page
	loop   *eventloop.Loop
	broker *broker.Broker
	orch   *session.Orchestrator
	ns     chan models.Notification
	group  *errgroup.Group
	cancel context.CancelFunc
	done   chan struct{}
	stop   sync.Once
	err    error
}

// Start builds and runs the countermeasure stack for page. A nil clock
// means the real clock. The service runs until Stop is called or ctx is
// cancelled; Stop must be called either way to wait for shutdown.
func Start(
	ctx context.Context,
	cfg *config.Instance,
	page player.Page,
	clock clockwork.Clock,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("service: config is required")
	}
	if page == nil {
		return nil, errors.New("service: page is required")
	}

	log.Info().Msgf("version: %s", config.AppVersion)

	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)

	ns := make(chan models.Notification, NotificationQueueSize)

	log.Info().Msg("starting notification broker")
	notifBroker := broker.NewBroker(gctx, ns)
	notifBroker.Start()

	log.Info().Msg("starting event loop")
	loop := eventloop.New(clock)
	group.Go(func() error {
		if err := loop.Run(gctx); err != nil {
			return fmt.Errorf("event loop: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-notifBroker.Done()
		return nil
	})

	opts := watchdog.Options{
		Notify:              ns,
		Grace:               cfg.GraceWindow(),
		OverlayPollInterval: cfg.OverlayPollInterval(),
		OverlayClickDelay:   cfg.OverlayClickDelay(),
	}
	log.Info().
		Dur("grace", opts.Grace).
		Dur("overlay_poll_interval", opts.OverlayPollInterval).
		Dur("overlay_click_delay", opts.OverlayClickDelay).
		Msg("starting session orchestrator")

	s := &Service{
		page:   page,
		loop:   loop,
		broker: notifBroker,
		orch:   session.New(page, loop, opts),
		ns:     ns,
		group:  group,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	log.Info().Msg("service fully initialized")
	return s, nil
}

// Navigate runs a navigation through the orchestrator and waits for the
// handler to finish. The initial page load must be reported here too.
func (s *Service) Navigate(ctx context.Context) error {
	return s.Do(ctx, s.orch.OnNavigate)
}

// Do runs fn on the event loop and waits for it.
func (s *Service) Do(ctx context.Context, fn func()) error {
	if err := s.loop.Do(ctx, fn); err != nil {
		if errors.Is(err, eventloop.ErrStopped) {
			return ErrNotRunning
		}
		return err
	}
	return nil
}

// Settle waits until the loop has nothing runnable at the clock's current
// time.
func (s *Service) Settle(ctx context.Context) error {
	if err := s.loop.Settle(ctx); err != nil {
		if errors.Is(err, eventloop.ErrStopped) {
			return ErrNotRunning
		}
		return err
	}
	return nil
}

// Current returns the active controller, or nil.
func (s *Service) Current(ctx context.Context) (*watchdog.Controller, error) {
	var c *watchdog.Controller
	err := s.Do(ctx, func() { c = s.orch.Current() })
	return c, err
}

// Status snapshots the session state on the loop.
func (s *Service) Status(ctx context.Context) (models.StatusResponse, error) {
	resp := models.StatusResponse{Version: config.AppVersion}
	err := s.Do(ctx, func() {
		resp.URL = s.page.Location()
		resp.Waiting = s.orch.Waiting()
		if c := s.orch.Current(); c != nil {
			resp.Session = &models.SessionStatus{
				ID:     c.ID(),
				State:  c.State().String(),
				Guards: c.Guards(),
			}
		}
	})
	return resp, err
}

// Subscribe registers an activity subscriber on the broker.
func (s *Service) Subscribe(bufferSize int) (notifChan <-chan models.Notification, id int) {
	return s.broker.Subscribe(bufferSize)
}

func (s *Service) Unsubscribe(id int) {
	s.broker.Unsubscribe(id)
}

// Notifications is the queue feeding the broker. Anything sent here is
// delivered after everything already produced by the loop.
func (s *Service) Notifications() chan<- models.Notification {
	return s.ns
}

// Dropped reports deliveries the broker skipped for full subscribers.
func (s *Service) Dropped() int64 {
	return s.broker.Dropped()
}

// Done is closed once Stop has completed.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Stop retires the active session, then shuts down the loop and broker and
// waits for both. Safe to call more than once.
func (s *Service) Stop() error {
	s.stop.Do(func() {
		log.Info().Msg("stopping service")

		closeCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		if err := s.loop.Do(closeCtx, s.orch.Close); err != nil &&
			!errors.Is(err, eventloop.ErrStopped) {
			log.Warn().Err(err).Msg("failed to retire session on shutdown")
		}
		cancel()

		s.cancel()
		s.err = s.group.Wait()
		close(s.done)
		log.Info().Msg("service stopped")
	})
	return s.err
}
