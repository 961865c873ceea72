// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: widths are terminal cells, so CJK and emoji count as two.

const ellipsis = "..."

// TruncateWidth shortens s to at most maxWidth cells, ending in "..." when
// there is room for it. Multi-byte characters are never split.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// PadWidth right-pads s with spaces to width cells. Longer strings are
// truncated first.
func PadWidth(s string, width int) string {
	s = TruncateWidth(s, width)
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
