// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events provides the in-process publish/subscribe channel that
// decouples the session timer from its presentation.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Type identifies a session lifecycle event.
type Type string

const (
	// Expiring is emitted by the timer when the countdown starts.
	// Seconds carries the full warning window length.
	Expiring Type = "session:expiring"

	// Tick is emitted by the timer once per second while counting down.
	// Seconds carries the remaining seconds.
	Tick Type = "session:tick"

	// Expired is emitted by the timer when the countdown reaches zero.
	Expired Type = "session:expired"

	// Closed is emitted by the presenter once the user resolved the dialog.
	Closed Type = "session:closed"

	// Restart asks the timer to recompute its schedule from the current token.
	Restart Type = "session:restart"
)

// Event is a single emission on the bus.
type Event struct {
	Type    Type
	Seconds int

	// Cycle identifies the countdown cycle that produced the event.
	// It is uuid.Nil for events not tied to a cycle (closed, restart).
	Cycle uuid.UUID

	At time.Time
}

// Handler receives events. Handlers are invoked synchronously by Publish.
type Handler func(Event)

// =============================================================================
// BUS
// =============================================================================

type subscription struct {
	id      uint64
	all     bool
	typ     Type
	handler Handler
}

// Bus is a typed in-process publish/subscribe channel.
// It is safe for concurrent use. Handlers run outside the bus lock, so a
// handler may itself publish, subscribe or unsubscribe.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events of type t.
// The returned function removes the subscription; calling it twice is harmless.
func (b *Bus) Subscribe(t Type, handler Handler) func() {
	return b.add(subscription{typ: t, handler: handler})
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.add(subscription{all: true, handler: handler})
}

func (b *Bus) add(sub subscription) func() {
	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers evt to every handler subscribed at the moment of the call,
// in registration order. A zero At is stamped with the current time.
// There is no queueing: handlers registered later never see this event.
func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.all || sub.typ == evt.Type {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		h(evt)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
