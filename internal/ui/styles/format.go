// Package styles contains Lip Gloss style definitions.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to fit within maxWidth, adding an ellipsis if needed.
// ANSI escape sequences are preserved and do not count towards the width.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// FitLabel pads or truncates a plain label to exactly width terminal cells.
// Wide (CJK) runes count as two cells.
func FitLabel(label string, width int) string {
	if width < 1 {
		return ""
	}
	if runewidth.StringWidth(label) > width {
		label = runewidth.Truncate(label, width, "…")
	}
	return runewidth.FillRight(label, width)
}

// FormatCount renders a count the way the bilibili web client does:
// plain below ten thousand, then with a 万 suffix.
func FormatCount(n uint64) string {
	if n < 10000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%.1f万", float64(n)/10000)
}
