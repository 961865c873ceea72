// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/backoffice-tui/internal/ui/components"
	"github.com/jeranaias/backoffice-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// SessionActions are the user decisions handled by the presenter.
type SessionActions interface {
	StayLoggedIn(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Refresher extends the session outside the expiry dialog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Options configures the dashboard.
type Options struct {
	Actions   SessionActions
	Refresher Refresher

	// Token is the credential state at start-up.
	Token TokenMsg

	// Window is the warning window, used to show when the dialog will open.
	Window time.Duration

	// Dark selects the dark palette (default: false, light).
	Dark bool

	// QuitDelay is how long the signed-out notice stays up (default: 2s).
	QuitDelay time.Duration

	// ActionTimeout bounds a single refresh or logout (default: 30s).
	ActionTimeout time.Duration

	// Now is the clock used for relative times (default: time.Now).
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.QuitDelay <= 0 {
		o.QuitDelay = 2 * time.Second
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root bubbletea model of the dashboard.
//
// It is driven entirely by messages: presenter calls arrive through
// ProgramView, and key actions run as commands on their own goroutine.
type Model struct {
	opts Options

	theme   *styles.Theme
	keys    components.KeyMap
	help    help.Model
	header  *components.Header
	overlay components.SessionTimeoutOverlay

	token TokenMsg

	busy     bool
	status   string
	quitting bool
	leaving  bool

	width  int
	height int
}

// New creates the dashboard model.
func New(opts Options) Model {
	opts.setDefaults()

	theme := styles.NewTheme(opts.Dark)
	keys := components.DefaultKeyMap()

	m := Model{
		opts:    opts,
		theme:   theme,
		keys:    keys,
		help:    help.New(),
		header:  components.NewHeader(theme),
		overlay: components.NewSessionTimeoutOverlay(keys),
		token:   opts.Token,
	}
	m.header.Subject = opts.Token.Info.Subject
	m.header.Status = m.tokenStatus()
	return m
}

// Init starts the clock that keeps relative times current.
func (m Model) Init() tea.Cmd {
	return clockTick()
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.header.SetWidth(msg.Width)
		m.overlay.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case clockMsg:
		if m.quitting {
			return m, nil
		}
		return m, clockTick()

	// ==========================================================================
	// Presenter
	// ==========================================================================
	case WarningMsg:
		m.overlay.Show(msg.Seconds)
		m.header.Status = components.StatusExpiring
		return m, nil

	case TickMsg:
		m.overlay.UpdateTime(msg.Seconds)
		return m, nil

	case DialogClosedMsg:
		m.overlay.Hide()
		m.header.Status = m.tokenStatus()
		return m, nil

	case SignedOutMsg:
		m.overlay.ShowSignedOut(msg.Reason)
		m.header.Status = components.StatusSignedOut
		if m.leaving {
			return m, nil
		}
		m.leaving = true
		return m, tea.Tick(m.opts.QuitDelay, func(time.Time) tea.Msg { return quitMsg{} })

	case TokenMsg:
		m.token = msg
		m.header.Subject = msg.Info.Subject
		if !m.overlay.IsVisible() {
			m.header.Status = m.tokenStatus()
		}
		return m, nil

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = styles.RenderError(msg.action.String() + " failed: " + msg.err.Error())
		} else if msg.action != actionLogout {
			m.status = styles.RenderSuccess("Session extended")
		}
		return m, nil

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy || m.overlay.IsSignedOut() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Logout):
		return m.run(actionLogout)

	case m.overlay.IsCountingDown() &&
		(key.Matches(msg, m.keys.Stay) || key.Matches(msg, m.keys.Refresh)):
		return m.run(actionStay)

	case key.Matches(msg, m.keys.Refresh):
		return m.run(actionRefresh)
	}
	return m, nil
}

// run starts a as a command; the result comes back as actionDoneMsg.
func (m Model) run(a action) (tea.Model, tea.Cmd) {
	var fn func(ctx context.Context) error
	switch a {
	case actionStay:
		fn = m.opts.Actions.StayLoggedIn
	case actionLogout:
		fn = m.opts.Actions.Logout
	case actionRefresh:
		if m.opts.Refresher == nil {
			return m, nil
		}
		fn = m.opts.Refresher.Refresh
	}
	if fn == nil {
		return m, nil
	}

	m.busy = true
	m.status = styles.RenderInfo("Working...")
	timeout := m.opts.ActionTimeout

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionDoneMsg{action: a, err: fn(ctx)}
	}
}

func (m Model) tokenStatus() components.SessionStatus {
	switch {
	case m.overlay.IsSignedOut():
		return components.StatusSignedOut
	case m.token.Present && m.token.Err == nil:
		return components.StatusActive
	default:
		return components.StatusNoSession
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the dashboard, or the overlay while one is showing.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.Panel.Render(m.viewSession()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(" " + m.status + "\n")
	}
	b.WriteString(m.theme.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) viewSession() string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.theme.Label.Render(label), m.theme.Value.Render(value))
	}

	switch {
	case !m.token.Present:
		return m.theme.Muted.Render("Not signed in. Run `backoffice token set` to store a session.")
	case m.token.Err != nil:
		return styles.RenderWarning("Token cannot be read: " + m.token.Err.Error())
	}

	now := m.opts.Now()
	info := m.token.Info

	subject := info.Subject
	if subject == "" {
		subject = "(unknown)"
	}

	rows := []string{
		row("Subject", subject),
		row("Expires", formatInstant(info.ExpiresAt, now)),
	}
	if m.opts.Window > 0 {
		rows = append(rows, row("Warns at", formatInstant(info.ExpiresAt.Add(-m.opts.Window), now)))
	}
	if !info.IssuedAt.IsZero() {
		rows = append(rows, row("Issued", info.IssuedAt.Local().Format(time.DateTime)))
	}
	return strings.Join(rows, "\n")
}

// formatInstant renders t as a clock time plus how far away it is.
func formatInstant(t, now time.Time) string {
	clock := t.Local().Format(time.TimeOnly)
	d := t.Sub(now).Truncate(time.Second)
	if d <= 0 {
		return fmt.Sprintf("%s (passed)", clock)
	}
	return fmt.Sprintf("%s (in %s)", clock, d)
}
