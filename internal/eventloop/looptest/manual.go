// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package looptest provides a deterministic scheduler for tests.
package looptest

import (
	"sort"
	"time"

	"github.com/jeranaias/backoffice-tui/internal/eventloop"
)

// Manual is a scheduler driven by an explicit clock.
// Callbacks only run from Advance or Flush, on the calling goroutine.
// It also counts how many timeouts and intervals are outstanding so tests
// can assert that schedules never overlap.
type Manual struct {
	now    time.Time
	seq    int
	timers []*manualTimer
	posted []func()

	// High-water marks of simultaneously active handles
	MaxTimeouts  int
	MaxIntervals int

	// Totals ever created
	CreatedTimeouts  int
	CreatedIntervals int
}

type manualTimer struct {
	m       *Manual
	seq     int
	at      time.Time
	every   time.Duration
	fn      func()
	stopped bool
}

// NewManual creates a scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc implements eventloop.Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) eventloop.Handle {
	m.CreatedTimeouts++
	t := m.add(d, 0, fn)
	if n := m.ActiveTimeouts(); n > m.MaxTimeouts {
		m.MaxTimeouts = n
	}
	return t
}

// Every implements eventloop.Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) eventloop.Handle {
	m.CreatedIntervals++
	t := m.add(d, d, fn)
	if n := m.ActiveIntervals(); n > m.MaxIntervals {
		m.MaxIntervals = n
	}
	return t
}

// Post implements eventloop.Poster. Posted work runs on the next Flush or Advance.
func (m *Manual) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, seq: m.seq, at: m.now.Add(d), every: every, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	for i, other := range t.m.timers {
		if other == t {
			t.m.timers = append(t.m.timers[:i], t.m.timers[i+1:]...)
			return
		}
	}
}

// ActiveTimeouts returns the number of pending one-shot callbacks.
func (m *Manual) ActiveTimeouts() int {
	n := 0
	for _, t := range m.timers {
		if t.every == 0 {
			n++
		}
	}
	return n
}

// ActiveIntervals returns the number of running repeating callbacks.
func (m *Manual) ActiveIntervals() int {
	return len(m.timers) - m.ActiveTimeouts()
}

// NextAt returns when the earliest pending callback fires.
func (m *Manual) NextAt() (time.Time, bool) {
	if len(m.timers) == 0 {
		return time.Time{}, false
	}
	next := m.earliest()
	return next.at, true
}

func (m *Manual) earliest() *manualTimer {
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	return m.timers[0]
}

// Flush runs posted work until none is left.
func (m *Manual) Flush() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

// Advance moves the clock forward by d, firing every callback that comes
// due in chronological order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)

	for {
		m.Flush()
		if len(m.timers) == 0 {
			break
		}
		next := m.earliest()
		if next.at.After(target) {
			break
		}

		m.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			next.Stop()
		}
		next.fn()
	}

	m.now = target
	m.Flush()
}
