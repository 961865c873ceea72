// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and lip gloss styles for the
backoffice TUI.

All colors are lipgloss.AdaptiveColor values so the same palette works on
light and dark terminals. State is never conveyed by color alone: every
status line carries an ASCII indicator from StatusIndicators.

# Palette

  - Emerald - session active
  - Amber   - expiry countdown running
  - Rose    - session expired or signed out
  - Cyan    - headers and key hints

# Usage

	theme := styles.NewTheme(true)
	fmt.Println(theme.Title.Render("Backoffice"))
	fmt.Println(styles.RenderWarning("Session expires in 0:29"))

Render tests pin the output to plain text with lipgloss.SetColorProfile(termenv.Ascii).
*/
package styles
