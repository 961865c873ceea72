// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/backoffice-tui/internal/eventloop"
	"github.com/jeranaias/backoffice-tui/internal/events"
	"github.com/jeranaias/backoffice-tui/internal/logging"
)

// DefaultWarningWindow is how long before token expiry the countdown starts.
const DefaultWarningWindow = 30 * time.Second

// =============================================================================
// TYPES
// =============================================================================

// Publisher is the part of the event bus the timer needs.
type Publisher interface {
	Publish(evt events.Event)
}

// CountdownState is the visible state of the current countdown.
type CountdownState struct {
	Running          bool
	SecondsRemaining int
}

// Config holds the timer's collaborators and settings.
type Config struct {
	// Window is the warning window before expiry (default: 30 seconds).
	Window time.Duration

	// Decoder extracts the expiry claim (default: JWTDecoder).
	Decoder ExpiryDecoder

	Logger logging.Logger
}

// Timer warns before the tracked access token expires.
//
// A Timer is confined to the goroutine that runs its scheduler's callbacks:
// SetToken, Restart and Close must be called from that goroutine too
// (post them through the event loop). This is what guarantees that no two
// entry points interleave mid-recompute.
type Timer struct {
	bus     Publisher
	sched   eventloop.Scheduler
	decoder ExpiryDecoder
	window  time.Duration
	log     logging.Logger

	token string

	// At most one of each is non-nil at any time
	wakeup eventloop.Handle
	ticker eventloop.Handle

	warnAt    time.Time
	scheduled bool

	running   bool
	remaining int
	cycle     uuid.UUID
}

// NewTimer creates an idle timer. Nothing is scheduled until SetToken.
func NewTimer(bus Publisher, sched eventloop.Scheduler, cfg Config) *Timer {
	if cfg.Window < time.Second {
		cfg.Window = DefaultWarningWindow
	}
	if cfg.Decoder == nil {
		cfg.Decoder = NewJWTDecoder()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	return &Timer{
		bus:     bus,
		sched:   sched,
		decoder: cfg.Decoder,
		window:  cfg.Window,
		log:     cfg.Logger.WithField("component", "session_timer"),
	}
}

// =============================================================================
// PUBLIC CONTRACT
// =============================================================================

// SetToken replaces the tracked token and reschedules from scratch.
// An empty token clears every pending callback.
func (t *Timer) SetToken(token string) {
	t.token = token
	t.Restart()
}

// Restart cancels any pending wake-up or ticker and recomputes the
// schedule from the tracked token. A token that cannot be decoded leaves
// the timer idle.
func (t *Timer) Restart() {
	t.clear()

	if t.token == "" {
		t.log.Debug("no token, timer idle")
		return
	}

	exp, err := t.decoder.Expiry(t.token)
	if err != nil {
		t.log.WithError(err).Debug("token expiry not decodable, timer idle")
		return
	}

	t.warnAt = exp.Add(-t.window)
	t.scheduled = true

	delay := t.warnAt.Sub(t.sched.Now())
	if delay <= 0 {
		t.log.WithField("expires_at", exp).Info("token already inside warning window")
		t.start()
		return
	}

	t.wakeup = t.sched.AfterFunc(delay, t.onWakeup)
	t.log.WithField("warn_at", t.warnAt).WithField("delay", delay.String()).Debug("warning armed")
}

// Close stops the countdown silently. No event is emitted.
func (t *Timer) Close() {
	if t.running {
		t.log.WithField("cycle", t.cycle.String()).Debug("countdown closed")
	}
	t.clear()
}

// State returns the current countdown state.
func (t *Timer) State() CountdownState {
	return CountdownState{Running: t.running, SecondsRemaining: t.remaining}
}

// WarnAt returns when the warning fires (or fired) for the tracked token.
func (t *Timer) WarnAt() (time.Time, bool) {
	return t.warnAt, t.scheduled
}

// Window returns the configured warning window.
func (t *Timer) Window() time.Duration {
	return t.window
}

// =============================================================================
// COUNTDOWN
// =============================================================================

func (t *Timer) onWakeup() {
	t.wakeup = nil
	t.start()
}

// start begins a countdown cycle. It is a no-op while a cycle is running.
func (t *Timer) start() {
	if t.running {
		return
	}

	t.running = true
	t.remaining = int(t.window / time.Second)
	t.cycle = uuid.New()
	t.ticker = t.sched.Every(time.Second, t.onTick)

	t.log.WithField("cycle", t.cycle.String()).WithField("seconds", t.remaining).Info("session expiring")
	t.publish(events.Expiring, t.remaining)
}

func (t *Timer) onTick() {
	if !t.running {
		return
	}

	t.remaining--
	if t.remaining > 0 {
		t.publish(events.Tick, t.remaining)
		return
	}

	cycle := t.cycle
	t.clear()
	t.log.WithField("cycle", cycle.String()).Info("session expired")
	t.bus.Publish(events.Event{Type: events.Expired, Cycle: cycle, At: t.sched.Now()})
}

// clear stops both callbacks and returns the timer to idle.
func (t *Timer) clear() {
	if t.wakeup != nil {
		t.wakeup.Stop()
		t.wakeup = nil
	}
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}

	t.running = false
	t.remaining = 0
	t.cycle = uuid.Nil
	t.scheduled = false
	t.warnAt = time.Time{}
}

func (t *Timer) publish(typ events.Type, seconds int) {
	t.bus.Publish(events.Event{
		Type:    typ,
		Seconds: seconds,
		Cycle:   t.cycle,
		At:      t.sched.Now(),
	})
}
