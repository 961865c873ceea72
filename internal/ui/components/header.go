// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/backoffice-tui/internal/ui/styles"
	"github.com/jeranaias/backoffice-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// SessionStatus is the session state shown in the header badge.
type SessionStatus int

const (
	StatusNoSession SessionStatus = iota
	StatusActive
	StatusExpiring
	StatusSignedOut
)

// String returns the badge text for the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusNoSession:
		return "NO SESSION"
	case StatusActive:
		return "ACTIVE"
	case StatusExpiring:
		return "EXPIRING"
	case StatusSignedOut:
		return "SIGNED OUT"
	default:
		return "UNKNOWN"
	}
}

// Header is the title bar with the signed-in subject and session badge.
type Header struct {
	Title   string
	Subject string
	Status  SessionStatus
	Width   int
	theme   *styles.Theme
}

// NewHeader creates a Header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "backoffice",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders a single-line header. The subject is truncated to whatever
// width the title and badge leave free.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	brand := h.theme.Title.Render(h.Title)
	badge := h.statusStyle().Render("[" + h.Status.String() + "]")

	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{brand}
	used := lipgloss.Width(brand) + lipgloss.Width(badge) + 2*lipgloss.Width(separator) + 2

	if h.Subject != "" {
		room := width - used
		if room >= 4 {
			parts = append(parts, h.theme.Subtitle.Render(util.TruncateWidth(h.Subject, room)))
		}
	}
	parts = append(parts, badge)

	return h.theme.Header.Width(width).Render(strings.Join(parts, separator))
}

func (h *Header) statusStyle() lipgloss.Style {
	switch h.Status {
	case StatusActive:
		return h.theme.Active
	case StatusExpiring:
		return h.theme.Counting
	case StatusSignedOut:
		return h.theme.Expired
	default:
		return h.theme.Muted
	}
}
