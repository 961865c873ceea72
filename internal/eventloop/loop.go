// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eventloop provides a single-goroutine cooperative executor.
//
// Work posted to a Loop, including every timer and interval callback it
// schedules, runs one item at a time on the goroutine that called Run.
// Components confined to the loop need no locking of their own.
package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// SCHEDULING INTERFACES
// =============================================================================

// Handle cancels a scheduled callback. Once Stop returns the callback is
// guaranteed not to run, even if its timer had already fired.
type Handle interface {
	Stop()
}

// Scheduler arms delayed and repeating callbacks.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Handle
	Every(d time.Duration, fn func()) Handle
}

// Poster queues work for execution on the loop goroutine.
type Poster interface {
	Post(fn func())
}

// =============================================================================
// LOOP
// =============================================================================

// Loop is an unbounded FIFO of functions drained by Run.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    bool
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. Calls made after Run has returned are dropped.
// Post never blocks, so it is safe to call from the loop goroutine itself.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.done = true
		l.pending = nil
		l.mu.Unlock()
	}()

	for {
		l.drain(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain(ctx context.Context) {
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

// =============================================================================
// SCHEDULER IMPLEMENTATION
// =============================================================================

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	h := &timeoutHandle{}
	h.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if h.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return h
}

// Every runs fn on the loop every d until the handle is stopped.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	h := &intervalHandle{done: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				l.Post(func() {
					if h.stopped.Load() {
						return
					}
					fn()
				})
			}
		}
	}()

	return h
}

type timeoutHandle struct {
	stopped atomic.Bool
	timer   *time.Timer
}

func (h *timeoutHandle) Stop() {
	h.stopped.Store(true)
	h.timer.Stop()
}

type intervalHandle struct {
	stopped atomic.Bool
	done    chan struct{}
}

func (h *intervalHandle) Stop() {
	if h.stopped.CompareAndSwap(false, true) {
		close(h.done)
	}
}
