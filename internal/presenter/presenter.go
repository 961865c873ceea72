// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package presenter turns session timer events into the timeout dialog and
// carries out the user's choice to stay signed in or sign out.
package presenter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/backoffice-tui/internal/eventloop"
	"github.com/jeranaias/backoffice-tui/internal/events"
	"github.com/jeranaias/backoffice-tui/internal/logging"
)

// Sign-out reasons passed to View.SignedOut.
const (
	ReasonExpired       = "Session expired"
	ReasonSignedOut     = "Signed out"
	ReasonRefreshFailed = "Session could not be extended"
)

// Bus is the part of the event bus the presenter uses.
type Bus interface {
	Subscribe(t events.Type, h events.Handler) func()
	Publish(evt events.Event)
}

// State is a snapshot of the dialog.
type State struct {
	Open    bool
	Seconds int
}

// Config wires the presenter to its collaborators.
type Config struct {
	Bus       Bus
	Scheduler eventloop.Scheduler
	View      View
	Auth      Authenticator
	Logger    logging.Logger

	// Go runs background work started from bus handlers (default: a new
	// goroutine). Tests pass a synchronous runner.
	Go func(func())
}

// Presenter is the session-timeout dialog controller.
//
// Bus handlers run on the timer's event loop; StayLoggedIn and Logout are
// usually called from UI command goroutines. State is mutex-protected and
// View and Authenticator calls are always made without holding the lock.
type Presenter struct {
	bus   Bus
	sched eventloop.Scheduler
	view  View
	auth  Authenticator
	log   logging.Logger
	spawn func(func())

	mu       sync.Mutex
	open     bool
	seconds  int
	deadline int
	safety   eventloop.Handle
	onClosed []func()

	// cycle is the countdown last opened; settled is set once the user
	// resolved it, so late ticks or expiry from that cycle are dropped.
	cycle   uuid.UUID
	settled bool

	unsubscribe []func()
}

// New creates a presenter and subscribes it to the timer's events.
func New(cfg Config) *Presenter {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	p := &Presenter{
		bus:   cfg.Bus,
		sched: cfg.Scheduler,
		view:  cfg.View,
		auth:  cfg.Auth,
		log:   cfg.Logger.WithField("component", "session_presenter"),
		spawn: cfg.Go,
	}
	if p.spawn == nil {
		p.spawn = func(fn func()) { go fn() }
	}

	p.unsubscribe = []func(){
		cfg.Bus.Subscribe(events.Expiring, p.handleExpiring),
		cfg.Bus.Subscribe(events.Tick, p.handleTick),
		cfg.Bus.Subscribe(events.Expired, p.handleExpired),
	}
	return p
}

// OnClosed registers fn to run each time the dialog is resolved by the user.
func (p *Presenter) OnClosed(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClosed = append(p.onClosed, fn)
}

// State returns the current dialog state.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Open: p.open, Seconds: p.seconds}
}

// Detach unsubscribes from the bus and stops the local countdown.
func (p *Presenter) Detach() {
	for _, unsub := range p.unsubscribe {
		unsub()
	}

	p.mu.Lock()
	p.stopSafetyLocked()
	p.mu.Unlock()
}

// =============================================================================
// USER ACTIONS
// =============================================================================

// StayLoggedIn closes the dialog and refreshes the session. A failed
// refresh signs the user out and the refresh error is returned.
func (p *Presenter) StayLoggedIn(ctx context.Context) error {
	p.resolve()

	if err := p.auth.Refresh(ctx); err != nil {
		p.log.WithError(err).Warn("session refresh failed, signing out")
		p.signOut(ctx, ReasonRefreshFailed)
		return err
	}

	p.log.Info("session extended")
	return nil
}

// Logout closes the dialog and signs the user out.
func (p *Presenter) Logout(ctx context.Context) error {
	p.resolve()
	return p.signOut(ctx, ReasonSignedOut)
}

// resolve announces that the user dealt with the dialog, then resets local state.
func (p *Presenter) resolve() {
	p.bus.Publish(events.Event{Type: events.Closed})

	p.mu.Lock()
	p.resetLocked()
	p.settled = true
	observers := append([]func(){}, p.onClosed...)
	p.mu.Unlock()

	p.view.Close()
	for _, fn := range observers {
		fn()
	}
}

func (p *Presenter) signOut(ctx context.Context, reason string) error {
	err := p.auth.SignOut(ctx)
	if err != nil {
		p.log.WithError(err).Warn("remote sign-out failed, local credentials cleared")
	}

	p.view.SignedOut(reason)
	return err
}

// =============================================================================
// TIMER EVENTS
// =============================================================================

func (p *Presenter) handleExpiring(evt events.Event) {
	p.mu.Lock()
	p.stopSafetyLocked()
	p.open = true
	p.cycle = evt.Cycle
	p.settled = false
	p.seconds = evt.Seconds
	p.deadline = evt.Seconds
	if p.sched != nil {
		p.safety = p.sched.Every(time.Second, p.safetyTick)
	}
	p.mu.Unlock()

	p.view.Open(evt.Seconds)
}

func (p *Presenter) handleTick(evt events.Event) {
	p.mu.Lock()
	if !p.open || p.staleLocked(evt) {
		p.mu.Unlock()
		return
	}
	p.seconds = evt.Seconds
	p.mu.Unlock()

	p.view.Update(evt.Seconds)
}

func (p *Presenter) handleExpired(evt events.Event) {
	p.mu.Lock()
	if p.staleLocked(evt) {
		p.mu.Unlock()
		p.log.WithField("cycle", evt.Cycle.String()).Debug("expiry for a resolved countdown ignored")
		return
	}
	p.resetLocked()
	p.mu.Unlock()

	p.view.Close()
	p.log.Info("session expired, signing out")

	p.spawn(func() {
		_ = p.signOut(context.Background(), ReasonExpired)
	})
}

// safetyTick closes the dialog if the timer never reports expiry.
func (p *Presenter) safetyTick() {
	p.mu.Lock()
	if !p.open {
		p.stopSafetyLocked()
		p.mu.Unlock()
		return
	}

	p.deadline--
	if p.deadline > 0 {
		p.mu.Unlock()
		return
	}

	p.resetLocked()
	p.mu.Unlock()

	p.log.Warn("countdown ran out without an expiry event, closing dialog")
	p.view.Close()
}

// staleLocked reports whether evt belongs to a countdown the user already
// resolved. The timer stops asynchronously after closed, so a queued tick
// can still arrive.
func (p *Presenter) staleLocked(evt events.Event) bool {
	return p.settled && evt.Cycle == p.cycle
}

func (p *Presenter) resetLocked() {
	p.stopSafetyLocked()
	p.open = false
	p.seconds = 0
	p.deadline = 0
}

func (p *Presenter) stopSafetyLocked() {
	if p.safety != nil {
		p.safety.Stop()
		p.safety = nil
	}
}
