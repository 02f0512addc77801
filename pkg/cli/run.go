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

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"
	"github.com/mkalinski/backdownsell/pkg/api"
	"github.com/mkalinski/backdownsell/pkg/config"
	"github.com/mkalinski/backdownsell/pkg/player/sim"
	"github.com/mkalinski/backdownsell/pkg/scenario"
	"github.com/mkalinski/backdownsell/pkg/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// RunScenario loads the scenario named by the flags, runs it on a fresh
// simulated page and writes the report to out.
func RunScenario(ctx context.Context, fs afero.Fs, cfg *config.Instance, f *Flags, out io.Writer) error {
	if *f.Scenario == "" {
		return ErrNoScenario
	}

	sc, err := scenario.Load(fs, *f.Scenario)
	if err != nil {
		return err
	}

	var clock clockwork.Clock
	var fake *clockwork.FakeClock
	if *f.Realtime {
		clock = clockwork.NewRealClock()
	} else {
		fake = clockwork.NewFakeClock()
		clock = fake
	}

	page := sim.NewPage(sc.URL)
	svc, err := service.Start(ctx, cfg, page, clock)
	if err != nil {
		return fmt.Errorf("error starting service: %w", err)
	}
	defer func() {
		if err := svc.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping service")
		}
	}()

	if addr := cfg.APIListen(); addr != "" {
		srv := api.NewServer(svc, nil)
		if _, err := srv.Start(ctx, addr); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(); err != nil {
				log.Error().Err(err).Msg("error stopping api server")
			}
		}()
	}

	r := scenario.Runner{Service: svc, Page: page, Wait: scenario.RealWait}
	if fake != nil {
		r.Wait = scenario.FakeWait(fake, svc, *f.Step)
	}

	report, err := r.Run(ctx, sc)
	if err != nil {
		return fmt.Errorf("scenario %q failed: %w", sc.Name, err)
	}

	return report.Write(out)
}
