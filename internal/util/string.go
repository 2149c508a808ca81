// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers.
package util

import (
	"github.com/mattn/go-runewidth"
)

// TruncateWidth shortens s to fit within width terminal cells, appending
// an ellipsis when truncation happens. Width is measured in display cells
// so CJK and other wide runes count as two.
func TruncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to exactly width display cells, truncating
// first if s is too wide.
func PadRight(s string, width int) string {
	s = TruncateWidth(s, width)
	return runewidth.FillRight(s, width)
}
