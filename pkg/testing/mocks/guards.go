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

package mocks

import (
	"github.com/mkalinski/backdownsell/pkg/guards"
	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/stretchr/testify/mock"
)

// MockGuard is a mock implementation of guards.Guard using testify/mock
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockGuard) Activate(v player.Video) guards.Handle {
	args := m.Called(v)
	if h, ok := args.Get(0).(guards.Handle); ok {
		return h
	}
	return nil
}

// MockHandle is a mock implementation of guards.Handle. Every call is
// recorded, so AssertNumberOfCalls catches double deactivation.
type MockHandle struct {
	mock.Mock
}

func (m *MockHandle) Deactivate() {
	m.Called()
}

// NewMockGuard returns a guard named name whose single activation yields h.
func NewMockGuard(name string) (*MockGuard, *MockHandle) {
	h := &MockHandle{}
	h.On("Deactivate").Return()

	g := &MockGuard{}
	g.On("Name").Return(name)
	g.On("Activate", mock.Anything).Return(h).Once()
	return g, h
}
