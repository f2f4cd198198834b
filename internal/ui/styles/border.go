// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderPanel renders lines inside a rounded border with the title embedded
// in the top border and an optional hint right-aligned after it:
//
//	╭─ Title ──────── hint ─╮
//
// Lines are bottom-anchored: when there are more lines than fit, the
// oldest (first) lines are dropped. Each line is truncated to the inner width.
func RenderPanel(lines []string, title, hint string, width, height int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = BorderFocusColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	innerWidth := max(width-2, 1)
	contentHeight := max(height-2, 1)

	if len(lines) > contentHeight {
		lines = lines[len(lines)-contentHeight:]
	}

	var b strings.Builder
	b.WriteString(buildTopBorder(title, hint, innerWidth, borderStyle, titleStyle))
	b.WriteString("\n")

	// Pad above the content so the newest line sits on the bottom row
	blank := borderStyle.Render(borderVertical) + strings.Repeat(" ", innerWidth) + borderStyle.Render(borderVertical)
	for i := len(lines); i < contentHeight; i++ {
		b.WriteString(blank)
		b.WriteString("\n")
	}

	for _, line := range lines {
		line = TruncateString(line, innerWidth)
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString(borderStyle.Render(borderVertical))
		b.WriteString(line)
		b.WriteString(borderStyle.Render(borderVertical))
		b.WriteString("\n")
	}

	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// buildTopBorder creates the top border with embedded title and hint.
func buildTopBorder(title, hint string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	// Format: ╭─ Title ───── hint ─╮
	// Need at least 4 chars: "─ " + " ─"
	if title == "" || innerWidth < 4 {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}

	available := innerWidth - 4
	displayTitle := TruncateString(title, available)
	used := 3 + lipgloss.Width(displayTitle) // "─ " + title + " "

	var hintText string
	if hint != "" {
		// " hint ─" must fit after at least one dash
		if need := lipgloss.Width(hint) + 3; used+1+need <= innerWidth {
			hintText = " " + hint + " "
			used += need
		}
	}

	dashes := max(innerWidth-used, 0)
	top := borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(displayTitle) +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, dashes))
	if hintText != "" {
		top += MutedStyle.Render(hintText) + borderStyle.Render(borderHorizontal)
	}
	return top + borderStyle.Render(borderTopRight)
}
