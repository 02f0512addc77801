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
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/player/sim"
	"github.com/mkalinski/backdownsell/pkg/service"
	"github.com/rs/zerolog/log"
)

// MethodFinished marks the end of a run in the activity stream.
const MethodFinished = "scenario.finished"

const reportBufferSize = 1024

// WaitFunc lets time pass for a wait step.
type WaitFunc func(ctx context.Context, d time.Duration) error

// RealWait sleeps on the wall clock.
func RealWait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	}
}

// FakeWait advances clock in increments of at most step, letting the
// service run everything that falls due after each increment.
func FakeWait(clock *clockwork.FakeClock, svc *service.Service, step time.Duration) WaitFunc {
	return func(ctx context.Context, d time.Duration) error {
		inc := step
		if inc <= 0 {
			inc = d
		}
		for d > 0 {
			inc = min(inc, d)
			clock.Advance(inc)
			if err := svc.Settle(ctx); err != nil {
				return err
			}
			d -= inc
		}
		return nil
	}
}

// Runner drives a scenario against a running service and the simulated
// page it was started with.
type Runner struct {
	Service *service.Service
	Page    *sim.Page
	Wait    WaitFunc
}

// Run executes sc with wall-clock waits.
func Run(ctx context.Context, svc *service.Service, page *sim.Page, sc *Scenario) (*Report, error) {
	r := Runner{Service: svc, Page: page, Wait: RealWait}
	return r.Run(ctx, sc)
}

// Run resets the page to the scenario URL, reports the initial load, runs
// every step in order and returns the activity observed along the way.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	wait := r.Wait
	if wait == nil {
		wait = RealWait
	}

	sub, id := r.Service.Subscribe(reportBufferSize)
	defer r.Service.Unsubscribe(id)
	dropped := r.Service.Dropped()

	log.Info().Str("scenario", sc.Name).Int("steps", len(sc.Steps)).Msg("scenario: starting")

	err := r.Service.Do(ctx, func() {
		r.Page.Navigate(sc.URL)
		if r.Page.Video() == nil {
			r.Page.AddVideo(sim.NewVideo())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare page: %w", err)
	}
	if err := r.Service.Navigate(ctx); err != nil {
		return nil, fmt.Errorf("initial navigation: %w", err)
	}

	for i, step := range sc.Steps {
		log.Debug().Int("step", i).Str("action", step.Action).Msg("scenario: step")
		if err := r.step(ctx, step, wait); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
	}

	if err := r.Service.Settle(ctx); err != nil {
		return nil, fmt.Errorf("failed to settle: %w", err)
	}

	select {
	case r.Service.Notifications() <- models.Notification{Method: MethodFinished}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to finish scenario: %w", ctx.Err())
	}

	report := &Report{Name: sc.Name}
	for {
		select {
		case n, ok := <-sub:
			if !ok {
				return nil, service.ErrNotRunning
			}
			if n.Method == MethodFinished {
				report.Dropped = r.Service.Dropped() - dropped
				log.Info().
					Str("scenario", sc.Name).
					Int("notifications", len(report.Notifications)).
					Msg("scenario: finished")
				return report, nil
			}
			report.Notifications = append(report.Notifications, n)
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to collect report: %w", ctx.Err())
		}
	}
}

func (r *Runner) step(ctx context.Context, step Step, wait WaitFunc) error {
	switch step.Action {
	case ActionNavigate:
		if step.URL != "" {
			if err := r.Service.Do(ctx, func() { r.Page.Navigate(step.URL) }); err != nil {
				return err
			}
		}
		return r.Service.Navigate(ctx)
	case ActionWait:
		if err := wait(ctx, step.Wait()); err != nil {
			return err
		}
		return r.Service.Settle(ctx)
	}

	var stepErr error
	err := r.Service.Do(ctx, func() {
		stepErr = r.apply(step)
	})
	if err != nil {
		return err
	}
	return stepErr
}

// apply runs on the event loop.
func (r *Runner) apply(step Step) error {
	switch step.Action {
	case ActionAddVideo:
		r.Page.AddVideo(sim.NewVideo())
		return nil
	case ActionRemoveVideo:
		r.Page.RemoveVideos()
		return nil
	case ActionOverlay:
		o := r.Page.Overlay()
		if o == nil {
			o = &sim.Overlay{}
			r.Page.SetOverlay(o)
		}
		if *step.Visible {
			o.Show()
		} else {
			o.Hide()
		}
		return nil
	}

	v := r.Page.Video()
	if v == nil {
		return ErrNoVideo
	}

	switch step.Action {
	case ActionPlay:
		if err := v.Play(); err != nil {
			log.Warn().Err(err).Msg("scenario: play refused")
		}
	case ActionPause:
		v.Pause()
	case ActionSeek:
		v.Tick(step.Position)
	case ActionTick:
		v.Tick(v.CurrentTime())
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}
