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

// Package broker fans activity notifications out to any number of
// subscribers. Sends are non-blocking so a stalled subscriber loses
// notifications instead of stalling the event loop that produced them.
package broker

import (
	"context"
	"sync/atomic"

	"github.com/mkalinski/backdownsell/pkg/api/models"
	"github.com/mkalinski/backdownsell/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// Broker reads a single source channel and broadcasts every notification
// to all current subscribers.
type Broker struct {
	ctx         context.Context
	source      <-chan models.Notification
	subscribers map[int]chan models.Notification
	done        chan struct{}
	mu          syncutil.RWMutex
	nextID      int
	dropped     atomic.Int64
}

func NewBroker(ctx context.Context, source <-chan models.Notification) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]chan models.Notification),
		done:        make(chan struct{}),
	}
}

// Start runs the broadcast loop in a goroutine until the source closes or
// the context is cancelled; subscriber channels are closed on the way out.
func (b *Broker) Start() {
	go func() {
		defer close(b.done)
		for {
			select {
			case notif, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(notif)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
}

// Done is closed once the broadcast loop has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) broadcast(notif models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- notif:
		default:
			b.dropped.Add(1)
			log.Warn().
				Int("subscriber_id", id).
				Str("method", notif.Method).
				Msg("broker: subscriber channel full, dropping notification")
		}
	}
}

// Subscribe registers a subscriber with room for bufferSize queued
// notifications and returns its channel and ID.
func (b *Broker) Subscribe(bufferSize int) (notifChan <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	ch := make(chan models.Notification, bufferSize)
	b.subscribers[id] = ch

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Msg("broker: new subscriber")

	return ch, id
}

// Unsubscribe removes a subscriber and closes its channel. Unknown IDs are
// ignored, so it is safe to call more than once.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("broker: subscriber removed")
	}
}

// Dropped is the number of deliveries skipped because a subscriber was full.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("broker: closed subscriber on shutdown")
	}
	b.subscribers = make(map[int]chan models.Notification)
}
