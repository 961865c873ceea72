// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/backoffice-tui/internal/ui/styles"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// SessionTimeoutOverlay is the modal shown while the access token is about
// to expire, and after the user has been signed out.
type SessionTimeoutOverlay struct {
	// State
	visible   bool
	seconds   int
	signedOut bool
	reason    string

	keys KeyMap

	// Dimensions
	width  int
	height int
}

// NewSessionTimeoutOverlay creates a hidden overlay.
func NewSessionTimeoutOverlay(keys KeyMap) SessionTimeoutOverlay {
	return SessionTimeoutOverlay{keys: keys}
}

// SetSize sets the overlay dimensions.
func (o *SessionTimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// =============================================================================
// STATE
// =============================================================================

// Show displays the countdown with seconds left.
func (o *SessionTimeoutOverlay) Show(seconds int) {
	o.visible = true
	o.signedOut = false
	o.reason = ""
	o.seconds = seconds
}

// UpdateTime changes the countdown. Ignored while hidden.
func (o *SessionTimeoutOverlay) UpdateTime(seconds int) {
	if !o.visible || o.signedOut {
		return
	}
	o.seconds = seconds
}

// Hide removes the countdown. A signed-out notice stays up.
func (o *SessionTimeoutOverlay) Hide() {
	if o.signedOut {
		return
	}
	o.visible = false
	o.seconds = 0
}

// ShowSignedOut replaces whatever is shown with the signed-out notice.
func (o *SessionTimeoutOverlay) ShowSignedOut(reason string) {
	o.visible = true
	o.signedOut = true
	o.reason = reason
	o.seconds = 0
}

// IsVisible reports whether the overlay is showing.
func (o *SessionTimeoutOverlay) IsVisible() bool {
	return o.visible
}

// IsCountingDown reports whether the countdown dialog is showing.
func (o *SessionTimeoutOverlay) IsCountingDown() bool {
	return o.visible && !o.signedOut
}

// IsSignedOut reports whether the signed-out notice is showing.
func (o *SessionTimeoutOverlay) IsSignedOut() bool {
	return o.signedOut
}

// Seconds returns the displayed countdown.
func (o *SessionTimeoutOverlay) Seconds() int {
	return o.seconds
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the overlay, or "" while hidden.
func (o SessionTimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}
	if o.signedOut {
		return o.viewSignedOut()
	}
	return o.viewWarning()
}

func (o SessionTimeoutOverlay) viewWarning() string {
	maxWidth := o.boxWidth()

	timeStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)

	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8).
		Align(lipgloss.Center)

	parts := []string{
		lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).
			Render(styles.StatusIndicators.Warning + " Session Expiring"),
		"",
		msgStyle.Render("Your session expires in " + timeStyle.Render(FormatCountdown(o.seconds))),
		"",
		o.renderHints(o.keys.Stay, o.keys.Logout),
	}

	return o.place(styles.Amber, maxWidth, parts)
}

func (o SessionTimeoutOverlay) viewSignedOut() string {
	maxWidth := o.boxWidth()

	reason := o.reason
	if reason == "" {
		reason = "Signed out"
	}

	parts := []string{
		lipgloss.NewStyle().Foreground(styles.Rose).Bold(true).
			Render(styles.StatusIndicators.Error + " " + reason),
		"",
		lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Width(maxWidth - 8).
			Align(lipgloss.Center).
			Render("Sign in again to continue."),
		"",
		lipgloss.NewStyle().Foreground(styles.TextSecondary).
			Render("Backoffice will exit shortly."),
	}

	return o.place(styles.Rose, maxWidth, parts)
}

func (o SessionTimeoutOverlay) renderHints(bindings ...key.Binding) string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Desc))
	}
	return strings.Join(hints, descStyle.Render("  |  "))
}

// boxWidth clamps the modal to 40..60 columns.
func (o SessionTimeoutOverlay) boxWidth() int {
	maxWidth := o.dims().width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}
	return maxWidth
}

type dims struct{ width, height int }

func (o SessionTimeoutOverlay) dims() dims {
	d := dims{o.width, o.height}
	if d.width == 0 {
		d.width = 60
	}
	if d.height == 0 {
		d.height = 24
	}
	return d
}

func (o SessionTimeoutOverlay) place(border lipgloss.AdaptiveColor, maxWidth int, parts []string) string {
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, parts...))

	d := o.dims()
	return lipgloss.Place(
		d.width, d.height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// FormatCountdown renders seconds as M:SS. Negative values show 0:00.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
