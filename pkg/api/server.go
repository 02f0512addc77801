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

// Package api serves the activity stream and session status over HTTP so
// a running simulation can be watched from outside the process.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/api/middleware"
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/service"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	RequestTimeout  = 10 * time.Second
	cleanupInterval = 5 * time.Minute
	subscriberQueue = 100
	shutdownTimeout = 2 * time.Second
)

type Server struct {
	svc     *service.Service
	clock   clockwork.Clock
	melody  *melody.Melody
	limiter *middleware.IPRateLimiter
	router  chi.Router
	http    *http.Server
	group   *errgroup.Group
	cancel  context.CancelFunc
	subID   int
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(svc *service.Service, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Server{
		svc:     svc,
		clock:   clock,
		melody:  melody.New(),
		limiter: middleware.NewIPRateLimiter(clock),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
	}))
	r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))

	s.melody.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	s.melody.HandleMessage(handleWSMessage)

	r.Get("/api/v1/events", func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("api: handling websocket request")
		}
	})
	r.With(chimiddleware.Timeout(RequestTimeout)).Get("/api/v1/status", s.handleStatus)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Status(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("api: reading status")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("api: writing status")
	}
}

func handleWSMessage(session *melody.Session, msg []byte) {
	if bytes.Equal(msg, []byte("ping")) {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("api: sending pong")
		}
		return
	}
	log.Debug().Int("size", len(msg)).Msg("api: ignoring client message")
}

func (s *Server) broadcast(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifications:
			if !ok {
				log.Debug().Msg("api: notification stream closed")
				return
			}

			data, err := json.Marshal(models.NotificationObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			})
			if err != nil {
				log.Error().Err(err).Msg("api: marshalling notification")
				continue
			}

			if err := s.melody.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("api: broadcasting notification")
			}
		}
	}
}

func (s *Server) cleanupLimiter(ctx context.Context) {
	ticker := s.clock.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.limiter.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// Start listens on addr and serves until Stop. The bound address is
// returned so ":0" can be used.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("api: listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	notifications, id := s.svc.Subscribe(subscriberQueue)
	s.subID = id

	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: RequestTimeout,
	}

	s.group, ctx = errgroup.WithContext(ctx)
	s.group.Go(func() error {
		s.broadcast(ctx, notifications)
		return nil
	})
	s.group.Go(func() error {
		s.cleanupLimiter(ctx)
		return nil
	})
	s.group.Go(func() error {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve: %w", err)
	})

	log.Info().Str("addr", ln.Addr().String()).Msg("api: listening")
	return ln.Addr(), nil
}

// Stop closes client connections and the listener and waits for the
// server goroutines.
func (s *Server) Stop() error {
	if err := s.melody.Close(); err != nil {
		log.Debug().Err(err).Msg("api: closing websocket sessions")
	}
	if s.http == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := s.http.Shutdown(ctx)
	s.cancel()
	s.svc.Unsubscribe(s.subID)

	if err := s.group.Wait(); err != nil {
		return err
	}
	if shutdownErr != nil {
		return fmt.Errorf("api: shutdown: %w", shutdownErr)
	}
	log.Info().Msg("api: stopped")
	return nil
}
