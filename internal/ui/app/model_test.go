// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/backoffice-tui/internal/session"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fakeActions struct {
	mu      sync.Mutex
	calls   []string
	stayErr error
}

func (f *fakeActions) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeActions) StayLoggedIn(context.Context) error { f.record("stay"); return f.stayErr }
func (f *fakeActions) Logout(context.Context) error       { f.record("logout"); return nil }
func (f *fakeActions) Refresh(context.Context) error      { f.record("refresh"); return nil }

func (f *fakeActions) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (Model, *fakeActions) {
	t.Helper()
	actions := &fakeActions{}
	m := New(Options{
		Actions:   actions,
		Refresher: actions,
		Window:    30 * time.Second,
		Now:       func() time.Time { return fixedNow },
	})
	return step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}), actions
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func signedIn(t *testing.T, m Model) Model {
	t.Helper()
	return step(t, m, TokenMsg{Present: true, Info: session.TokenInfo{
		Subject:   "ops@example.com",
		ExpiresAt: fixedNow.Add(5 * time.Minute),
	}})
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestView_NotSignedIn(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	require.Contains(t, view, "[NO SESSION]")
	require.Contains(t, view, "Not signed in")
}

func TestView_SignedIn(t *testing.T) {
	m, _ := newTestModel(t)
	m = signedIn(t, m)

	view := m.View()
	require.Contains(t, view, "[ACTIVE]")
	require.Contains(t, view, "ops@example.com")
	require.Contains(t, view, "(in 5m0s)")
	require.Contains(t, view, "(in 4m30s)")
	require.Contains(t, view, "r refresh now")
}

func TestView_UndecodableToken(t *testing.T) {
	m, _ := newTestModel(t)
	m = step(t, m, TokenMsg{Present: true, Err: errors.New("token has no expiry claim")})

	require.Contains(t, m.View(), "[!] Token cannot be read")
	require.Contains(t, m.View(), "[NO SESSION]")
}

func TestRefreshKey_OutsideDialog(t *testing.T) {
	m, actions := newTestModel(t)
	m = signedIn(t, m)

	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	require.True(t, m.busy)

	m = step(t, m, cmd())
	require.False(t, m.busy)
	require.Equal(t, []string{"refresh"}, actions.Calls())
	require.Contains(t, m.View(), "[OK] Session extended")
}

// =============================================================================
// EXPIRY DIALOG
// =============================================================================

func TestDialog_CountdownAndStay(t *testing.T) {
	m, actions := newTestModel(t)
	m = signedIn(t, m)

	m = step(t, m, WarningMsg{Seconds: 30})
	require.Contains(t, m.View(), "0:30")

	m = step(t, m, TickMsg{Seconds: 29})
	require.Contains(t, m.View(), "0:29")

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	// Keys are ignored while the action runs
	m, again := press(t, m, "enter")
	require.Nil(t, again)

	m = step(t, m, cmd())
	m = step(t, m, DialogClosedMsg{})
	require.Equal(t, []string{"stay"}, actions.Calls())
	require.NotContains(t, m.View(), "Session Expiring")
	require.Contains(t, m.View(), "[ACTIVE]")
}

func TestDialog_RefreshKeyMeansStay(t *testing.T) {
	m, actions := newTestModel(t)
	m = step(t, signedIn(t, m), WarningMsg{Seconds: 10})

	_, cmd := press(t, m, "r")
	cmd()
	require.Equal(t, []string{"stay"}, actions.Calls())
}

func TestDialog_StayFailureShown(t *testing.T) {
	m, actions := newTestModel(t)
	actions.stayErr = errors.New("backend down")
	m = step(t, signedIn(t, m), WarningMsg{Seconds: 10})

	m, cmd := press(t, m, "enter")
	m = step(t, m, DialogClosedMsg{})
	m = step(t, m, cmd())

	require.Contains(t, m.View(), "stay signed in failed: backend down")
}

func TestDialog_Logout(t *testing.T) {
	m, actions := newTestModel(t)
	m = step(t, signedIn(t, m), WarningMsg{Seconds: 10})

	_, cmd := press(t, m, "l")
	cmd()
	require.Equal(t, []string{"logout"}, actions.Calls())
}

// =============================================================================
// SIGN-OUT
// =============================================================================

func TestSignedOut_QuitsOnce(t *testing.T) {
	m, actions := newTestModel(t)
	m = signedIn(t, m)

	next, cmd := m.Update(SignedOutMsg{Reason: "Session expired"})
	m = next.(Model)
	require.NotNil(t, cmd, "quit is scheduled")
	require.Contains(t, m.View(), "[X] Session expired")

	next, cmd = m.Update(SignedOutMsg{Reason: "Session expired"})
	m = next.(Model)
	require.Nil(t, cmd, "quit is scheduled only once")

	// Only quit is accepted now
	m, cmd = press(t, m, "r")
	require.Nil(t, cmd)
	require.Empty(t, actions.Calls())

	next, cmd = m.Update(quitMsg{})
	require.Equal(t, tea.QuitMsg{}, cmd())
	require.Empty(t, next.(Model).View())
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, "q")
	require.Equal(t, tea.QuitMsg{}, cmd())
}

// =============================================================================
// VIEWS
// =============================================================================

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func TestProgramView_ForwardsAfterAttach(t *testing.T) {
	v := NewProgramView()
	v.Open(30) // dropped

	sender := &recordingSender{}
	v.Attach(sender)
	v.Open(30)
	v.Update(29)
	v.Close()
	v.SignedOut("Signed out")

	require.Equal(t, []tea.Msg{
		WarningMsg{Seconds: 30},
		TickMsg{Seconds: 29},
		DialogClosedMsg{},
		SignedOutMsg{Reason: "Signed out"},
	}, sender.msgs)
}

func TestLogView(t *testing.T) {
	var buf bytes.Buffer
	v := NewLogView(&buf)

	v.Open(30)
	for s := 29; s >= 1; s-- {
		v.Update(s)
	}
	v.SignedOut("Session expired")
	v.SignedOut("Session expired")

	select {
	case <-v.Done():
	default:
		t.Fatal("Done should be closed after sign-out")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"[!] Session expires in 0:30",
		"[!] Session expires in 0:20",
		"[!] Session expires in 0:10",
		"[!] Session expires in 0:05",
		"[!] Session expires in 0:04",
		"[!] Session expires in 0:03",
		"[!] Session expires in 0:02",
		"[!] Session expires in 0:01",
		"[X] Session expired",
		"[X] Session expired",
	}, lines)
}

func TestTokenState(t *testing.T) {
	require.Equal(t, TokenMsg{}, TokenState(""))

	msg := TokenState("not-a-jwt")
	require.True(t, msg.Present)
	require.Error(t, msg.Err)
}

func TestNew_InitialToken(t *testing.T) {
	m := New(Options{
		Actions: &fakeActions{},
		Token: TokenMsg{Present: true, Info: session.TokenInfo{
			Subject:   "boot@example.com",
			ExpiresAt: fixedNow.Add(time.Hour),
		}},
		Now: func() time.Time { return fixedNow },
	})

	view := m.View()
	require.Contains(t, view, "boot@example.com")
	require.Contains(t, view, "[ACTIVE]")
	require.NotContains(t, view, "Warns at")
}
