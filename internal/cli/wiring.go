// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/backoffice-tui/internal/audit"
	"github.com/jeranaias/backoffice-tui/internal/auth"
	"github.com/jeranaias/backoffice-tui/internal/config"
	"github.com/jeranaias/backoffice-tui/internal/eventloop"
	"github.com/jeranaias/backoffice-tui/internal/events"
	"github.com/jeranaias/backoffice-tui/internal/logging"
	"github.com/jeranaias/backoffice-tui/internal/presenter"
	"github.com/jeranaias/backoffice-tui/internal/session"
)

// authClient is what both auth modes provide.
type authClient interface {
	Refresh(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// services are the long-lived collaborators shared by every command.
type services struct {
	cfg   *config.Config
	log   logging.Logger
	store *auth.Store
	auth  authClient

	// nil when auditing is disabled
	audit *audit.Store
}

func openServices(cfg *config.Config, log logging.Logger) (*services, error) {
	store, err := auth.OpenStore(cfg.TokenFile())
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	s := &services{
		cfg:   cfg,
		log:   log,
		store: store,
		auth:  newAuthClient(cfg, store, log),
	}

	if cfg.Audit.Enabled {
		a, err := audit.Open(cfg.AuditPath())
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		s.audit = a
	}
	return s, nil
}

func (s *services) Close() error {
	if s.audit != nil {
		return s.audit.Close()
	}
	return nil
}

func newAuthClient(cfg *config.Config, store auth.TokenStore, log logging.Logger) authClient {
	cc := auth.ClientConfig{
		Timeout:           cfg.RequestTimeout(),
		RetryMaxElapsed:   cfg.RetryMaxElapsed(),
		RequestsPerSecond: cfg.Auth.RequestsPerSecond,
		Logger:            log,
	}

	if cfg.Auth.Mode == config.AuthModeOAuth2 {
		return auth.NewOAuth2Client(store, auth.OAuth2Config{
			ClientConfig: cc,
			ClientID:     cfg.Auth.OAuth2.ClientID,
			ClientSecret: cfg.Auth.OAuth2.ClientSecret,
			TokenURL:     cfg.Auth.OAuth2.TokenURL,
			RevokeURL:    cfg.Auth.OAuth2.RevokeURL,
			Scopes:       cfg.Auth.OAuth2.Scopes,
		})
	}

	return auth.NewRESTClient(store, auth.RESTConfig{
		ClientConfig: cc,
		BaseURL:      cfg.Auth.BaseURL,
		RefreshPath:  cfg.Auth.RefreshPath,
		LogoutPath:   cfg.Auth.LogoutPath,
	})
}

// =============================================================================
// SESSION GUARD
// =============================================================================

// guard is the running countdown: loop, timer, presenter and the
// subscriptions between them.
type guard struct {
	svc       *services
	bus       *events.Bus
	loop      *eventloop.Loop
	timer     *session.Timer
	presenter *presenter.Presenter
	recorder  *audit.Recorder

	unsubscribe []func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// wire builds the guard around view. Nothing runs until start.
func (s *services) wire(view presenter.View) *guard {
	bus := events.NewBus()
	loop := eventloop.New()

	g := &guard{
		svc:  s,
		bus:  bus,
		loop: loop,
		timer: session.NewTimer(bus, loop, session.Config{
			Window: s.cfg.WarningWindow(),
			Logger: s.log,
		}),
	}

	if s.audit != nil {
		g.recorder = audit.Attach(bus, s.audit, s.log)
	}

	g.presenter = presenter.New(presenter.Config{
		Bus:       bus,
		Scheduler: loop,
		View:      view,
		Auth:      s.auth,
		Logger:    s.log,
	})

	// The timer is confined to the loop goroutine
	g.unsubscribe = append(g.unsubscribe,
		bus.Subscribe(events.Closed, func(events.Event) { loop.Post(g.timer.Close) }),
		bus.Subscribe(events.Restart, func(events.Event) { loop.Post(g.timer.Restart) }),
		s.store.Subscribe(func(access string) {
			loop.Post(func() { g.timer.SetToken(access) })
		}),
	)
	return g
}

// start runs the loop and the token-file watcher, then hands the current
// token to the timer.
func (g *guard) start(ctx context.Context) error {
	watcher, err := auth.NewWatcher(g.svc.store, g.bus, g.svc.log)
	if err != nil {
		return fmt.Errorf("watch token file: %w", err)
	}

	ctx, g.cancel = context.WithCancel(ctx)

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		_ = g.loop.Run(ctx)
	}()
	go func() {
		defer g.wg.Done()
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.svc.log.WithError(err).Warn("token file watcher stopped")
		}
	}()

	token := g.svc.store.Token()
	g.loop.Post(func() { g.timer.SetToken(token) })
	return nil
}

// restart asks the timer to recompute its schedule.
func (g *guard) restart() {
	g.bus.Publish(events.Event{Type: events.Restart})
}

// stop tears everything down. Safe to call more than once.
func (g *guard) stop() {
	for _, unsub := range g.unsubscribe {
		unsub()
	}
	g.unsubscribe = nil

	if g.cancel != nil {
		g.cancel()
	}
	g.wg.Wait()

	// The loop has exited, so nothing else touches the timer now.
	// Close stops its ticker goroutine.
	g.timer.Close()

	g.presenter.Detach()
	if g.recorder != nil {
		g.recorder.Detach()
		g.recorder = nil
	}
}
