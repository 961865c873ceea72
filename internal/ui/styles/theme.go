// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the dashboard.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	Header   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style

	Label lipgloss.Style
	Value lipgloss.Style
	Muted lipgloss.Style

	Active   lipgloss.Style
	Counting lipgloss.Style
	Expired  lipgloss.Style

	Panel  lipgloss.Style
	Footer lipgloss.Style
	Key    lipgloss.Style
}

// NewTheme creates a theme for a dark or light background. The color
// profile comes from the terminal.
func NewTheme(dark bool) *Theme {
	lipgloss.SetHasDarkBackground(dark)

	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(12)

	t.Value = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Active = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.Counting = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.Expired = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.Key = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
}

// SetSize updates the theme dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	return LayoutWide
}

// LayoutMode represents the responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutWide
)
