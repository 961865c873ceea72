// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jeranaias/backoffice-tui/internal/eventloop/looptest"
	"github.com/jeranaias/backoffice-tui/internal/events"
	"github.com/jeranaias/backoffice-tui/internal/presenter"
	presentermock "github.com/jeranaias/backoffice-tui/internal/presenter/mock"
	"github.com/jeranaias/backoffice-tui/internal/session"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	bus   *events.Bus
	sched *looptest.Manual
	view  *presentermock.View
	auth  *presentermock.Authenticator
	p     *presenter.Presenter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		bus:   events.NewBus(),
		sched: looptest.NewManual(epoch),
		view:  presentermock.NewView(ctrl),
		auth:  presentermock.NewAuthenticator(ctrl),
	}
	h.p = presenter.New(presenter.Config{
		Bus:       h.bus,
		Scheduler: h.sched,
		View:      h.view,
		Auth:      h.auth,
		Go:        func(fn func()) { fn() },
	})
	return h
}

func (h *harness) publish(typ events.Type, seconds int) {
	h.publishCycle(typ, seconds, uuid.Nil)
}

func (h *harness) publishCycle(typ events.Type, seconds int, cycle uuid.UUID) {
	h.bus.Publish(events.Event{Type: typ, Seconds: seconds, Cycle: cycle, At: h.sched.Now()})
}

// =============================================================================
// TIMER EVENTS
// =============================================================================

func TestPresenter_ExpiringOpensAndTicksUpdate(t *testing.T) {
	h := newHarness(t)

	gomock.InOrder(
		h.view.EXPECT().Open(30),
		h.view.EXPECT().Update(29),
		h.view.EXPECT().Update(28),
	)

	h.publish(events.Expiring, 30)
	require.Equal(t, presenter.State{Open: true, Seconds: 30}, h.p.State())

	h.publish(events.Tick, 29)
	h.publish(events.Tick, 28)
	require.Equal(t, presenter.State{Open: true, Seconds: 28}, h.p.State())
}

func TestPresenter_TickIgnoredWhileClosed(t *testing.T) {
	h := newHarness(t)

	h.publish(events.Tick, 12)
	require.Equal(t, presenter.State{}, h.p.State())
}

func TestPresenter_ExpiredClosesAndSignsOut(t *testing.T) {
	h := newHarness(t)

	gomock.InOrder(
		h.view.EXPECT().Open(30),
		h.view.EXPECT().Close(),
		h.auth.EXPECT().SignOut(gomock.Any()).Return(nil),
		h.view.EXPECT().SignedOut(presenter.ReasonExpired),
	)

	h.publish(events.Expiring, 30)
	h.publish(events.Expired, 0)

	require.False(t, h.p.State().Open)
	require.Zero(t, h.sched.ActiveIntervals(), "local countdown must stop")
}

func TestPresenter_ExpiredSignsOutEvenWhenRemoteFails(t *testing.T) {
	h := newHarness(t)

	h.view.EXPECT().Close()
	h.auth.EXPECT().SignOut(gomock.Any()).Return(errors.New("connection refused"))
	h.view.EXPECT().SignedOut(presenter.ReasonExpired)

	h.publish(events.Expired, 0)
}

func TestPresenter_SafetyNetClosesDialog(t *testing.T) {
	h := newHarness(t)

	h.view.EXPECT().Open(3)
	h.publish(events.Expiring, 3)
	require.Equal(t, 1, h.sched.ActiveIntervals())

	h.sched.Advance(2 * time.Second)
	require.True(t, h.p.State().Open)

	h.view.EXPECT().Close()
	h.sched.Advance(time.Second)

	require.False(t, h.p.State().Open)
	require.Zero(t, h.sched.ActiveIntervals())
}

func TestPresenter_RepeatedExpiringKeepsOneLocalCountdown(t *testing.T) {
	h := newHarness(t)

	h.view.EXPECT().Open(30).Times(3)
	h.publish(events.Expiring, 30)
	h.publish(events.Expiring, 30)
	h.publish(events.Expiring, 30)

	require.Equal(t, 1, h.sched.ActiveIntervals())
}

// =============================================================================
// USER ACTIONS
// =============================================================================

func TestPresenter_StayLoggedIn(t *testing.T) {
	tests := []struct {
		name       string
		refreshErr error
		expect     func(h *harness)
	}{
		{
			name: "success",
			expect: func(h *harness) {
				h.view.EXPECT().Close()
				h.auth.EXPECT().Refresh(gomock.Any()).Return(nil)
			},
		},
		{
			name:       "refresh_failure_forces_sign_out",
			refreshErr: errors.New("401 unauthorized"),
			expect: func(h *harness) {
				gomock.InOrder(
					h.view.EXPECT().Close(),
					h.auth.EXPECT().Refresh(gomock.Any()).Return(errors.New("401 unauthorized")),
					h.auth.EXPECT().SignOut(gomock.Any()).Return(nil),
					h.view.EXPECT().SignedOut(presenter.ReasonRefreshFailed),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.view.EXPECT().Open(30)
			h.publish(events.Expiring, 30)

			var closed []events.Event
			h.bus.Subscribe(events.Closed, func(e events.Event) {
				closed = append(closed, e)
				require.True(t, h.p.State().Open, "closed is announced before the local reset")
			})

			observed := 0
			h.p.OnClosed(func() { observed++ })

			tt.expect(h)
			err := h.p.StayLoggedIn(context.Background())

			if tt.refreshErr != nil {
				require.EqualError(t, err, tt.refreshErr.Error())
			} else {
				require.NoError(t, err)
			}
			require.Len(t, closed, 1)
			require.Equal(t, 1, observed)
			require.Equal(t, presenter.State{}, h.p.State())
			require.Zero(t, h.sched.ActiveIntervals())
		})
	}
}

func TestPresenter_LogoutClearsLocallyOnRemoteFailure(t *testing.T) {
	h := newHarness(t)
	remote := errors.New("503 service unavailable")

	gomock.InOrder(
		h.view.EXPECT().Close(),
		h.auth.EXPECT().SignOut(gomock.Any()).Return(remote),
		h.view.EXPECT().SignedOut(presenter.ReasonSignedOut),
	)

	err := h.p.Logout(context.Background())
	require.ErrorIs(t, err, remote)
	require.Equal(t, presenter.State{}, h.p.State())
}

func TestPresenter_Detach(t *testing.T) {
	h := newHarness(t)

	h.view.EXPECT().Open(30)
	h.publish(events.Expiring, 30)

	h.p.Detach()
	require.Zero(t, h.bus.Len())
	require.Zero(t, h.sched.ActiveIntervals())

	h.publish(events.Tick, 29)
	h.publish(events.Expired, 0)
}

func TestPresenter_LateEventsAfterStayAreIgnored(t *testing.T) {
	h := newHarness(t)
	cycle := uuid.New()

	h.view.EXPECT().Open(1)
	h.publishCycle(events.Expiring, 1, cycle)

	h.view.EXPECT().Close()
	h.auth.EXPECT().Refresh(gomock.Any()).Return(nil)
	require.NoError(t, h.p.StayLoggedIn(context.Background()))

	// Timer callbacks queued before Close ran; no SignOut may follow.
	h.publishCycle(events.Tick, 1, cycle)
	h.publishCycle(events.Expired, 0, cycle)

	require.Equal(t, presenter.State{}, h.p.State())
}

func TestPresenter_NextCycleAfterStayStillExpires(t *testing.T) {
	h := newHarness(t)
	first, next := uuid.New(), uuid.New()

	h.view.EXPECT().Open(30)
	h.publishCycle(events.Expiring, 30, first)

	h.view.EXPECT().Close()
	h.auth.EXPECT().Refresh(gomock.Any()).Return(nil)
	require.NoError(t, h.p.StayLoggedIn(context.Background()))

	gomock.InOrder(
		h.view.EXPECT().Open(30),
		h.view.EXPECT().Close(),
		h.auth.EXPECT().SignOut(gomock.Any()).Return(nil),
		h.view.EXPECT().SignedOut(presenter.ReasonExpired),
	)
	h.publishCycle(events.Expiring, 30, next)
	h.publishCycle(events.Expired, 0, next)
}

func TestPresenter_LateExpiryAfterLogoutIsIgnored(t *testing.T) {
	h := newHarness(t)
	cycle := uuid.New()

	h.view.EXPECT().Open(2)
	h.publishCycle(events.Expiring, 2, cycle)

	gomock.InOrder(
		h.view.EXPECT().Close(),
		h.auth.EXPECT().SignOut(gomock.Any()).Return(nil),
		h.view.EXPECT().SignedOut(presenter.ReasonSignedOut),
	)
	require.NoError(t, h.p.Logout(context.Background()))

	h.publishCycle(events.Expired, 0, cycle)
}

// =============================================================================
// WITH A REAL TIMER
// =============================================================================

func TestPresenter_StayLoggedInStopsTimer(t *testing.T) {
	h := newHarness(t)

	decoder := session.DecoderFunc(func(string) (time.Time, error) {
		return epoch.Add(20 * time.Second), nil
	})
	timer := session.NewTimer(h.bus, h.sched, session.Config{Window: 30 * time.Second, Decoder: decoder})
	h.bus.Subscribe(events.Closed, func(events.Event) {
		h.sched.Post(timer.Close)
	})

	h.view.EXPECT().Open(30)
	h.view.EXPECT().Update(gomock.Any()).Times(4)
	timer.SetToken("tok")
	h.sched.Advance(4 * time.Second)

	h.view.EXPECT().Close()
	h.auth.EXPECT().Refresh(gomock.Any()).Return(nil)
	require.NoError(t, h.p.StayLoggedIn(context.Background()))

	h.sched.Flush()
	require.False(t, timer.State().Running)

	// Any further Update, Close or SignOut call fails the mock controller.
	h.sched.Advance(time.Minute)
	require.Zero(t, h.sched.ActiveIntervals())
	require.Zero(t, h.sched.ActiveTimeouts())
}

func TestPresenter_TimerExpiryEndToEnd(t *testing.T) {
	h := newHarness(t)

	decoder := session.DecoderFunc(func(string) (time.Time, error) {
		return epoch.Add(35 * time.Second), nil
	})
	timer := session.NewTimer(h.bus, h.sched, session.Config{Window: 30 * time.Second, Decoder: decoder})

	h.view.EXPECT().Open(30)
	h.view.EXPECT().Update(gomock.Any()).Times(29)
	h.view.EXPECT().Close()
	h.auth.EXPECT().SignOut(gomock.Any()).Return(nil)
	h.view.EXPECT().SignedOut(presenter.ReasonExpired)

	timer.SetToken("tok")
	h.sched.Advance(40 * time.Second)

	require.False(t, h.p.State().Open)
}
