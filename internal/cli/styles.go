// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/backoffice-tui/internal/ui/styles"
)

// Plain command output styles.
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	WarnStyle    = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(14)
	DimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
)
