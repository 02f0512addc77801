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
	"fmt"

	"github.com/mkalinski/backdownsell/pkg/player"
	"github.com/stretchr/testify/mock"
)

// MockVideo is a mock implementation of player.Video using testify/mock
type MockVideo struct {
	mock.Mock
}

func (m *MockVideo) Paused() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockVideo) CurrentTime() float64 {
	args := m.Called()
	if f, ok := args.Get(0).(float64); ok {
		return f
	}
	return 0
}

func (m *MockVideo) SetCurrentTime(seconds float64) {
	m.Called(seconds)
}

func (m *MockVideo) Play() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockVideo) AddListener(ev player.Event, fn player.Listener) func() {
	args := m.Called(ev, fn)
	if remove, ok := args.Get(0).(func()); ok {
		return remove
	}
	return func() {}
}

// MockPage is a mock implementation of player.Page using testify/mock
type MockPage struct {
	mock.Mock
}

func (m *MockPage) FindVideo() (player.Video, bool) {
	args := m.Called()
	v, _ := args.Get(0).(player.Video)
	return v, args.Bool(1)
}

func (m *MockPage) FindOverlay() (player.Overlay, bool) {
	args := m.Called()
	o, _ := args.Get(0).(player.Overlay)
	return o, args.Bool(1)
}

func (m *MockPage) Location() string {
	args := m.Called()
	return args.String(0)
}
