// Package tabbar renders the row of session tabs. Every tab is wrapped in
// a bubblezone mark so a mouse click can select it.
package tabbar

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/biliterm/internal/session"
	"github.com/zjrosen/biliterm/internal/ui/styles"
)

const (
	zonePrefix = "tab-"

	// minLabelWidth keeps a squeezed label recognisable.
	minLabelWidth = 6
)

// Tab is one entry of the bar.
type Tab struct {
	Label  string
	Status session.Status
	Active bool
}

// ZoneID is the bubblezone id of the tab at index i.
func ZoneID(i int) string {
	return zonePrefix + strconv.Itoa(i)
}

// Marker is the status glyph shown before a tab label.
func Marker(s session.Status) string {
	switch s {
	case session.Running:
		return styles.RunningMarkerStyle.Render("●")
	case session.Cancelled:
		return styles.CancelledMarkerStyle.Render("✕")
	default:
		return styles.FinishedMarkerStyle.Render("○")
	}
}

// Render draws tabs into a single line at most width cells wide. Labels
// are shortened evenly when the bar would overflow.
func Render(tabs []Tab, width int) string {
	if len(tabs) == 0 {
		return styles.MutedStyle.Render(ansi.Truncate("No open rooms", max(width, 0), "…"))
	}

	labelWidth := 0
	for _, t := range tabs {
		labelWidth = max(labelWidth, runewidth.StringWidth(t.Label))
	}
	// Each tab spends 2 cells of padding, 2 on the marker and 1 separator.
	if width > 0 {
		fit := width/len(tabs) - 5
		labelWidth = max(min(labelWidth, fit), minLabelWidth)
	}

	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := t.Label
		if runewidth.StringWidth(label) > labelWidth {
			label = styles.FitLabel(label, labelWidth)
		}
		style := styles.TabInactiveStyle
		if t.Active {
			style = styles.TabActiveStyle
		}
		parts = append(parts, zone.Mark(ZoneID(i), style.Render(Marker(t.Status)+" "+label)))
	}

	bar := strings.Join(parts, " ")
	if width > 0 && lipgloss.Width(bar) > width {
		bar = ansi.Truncate(bar, width, "…")
	}
	return bar
}

// HitTest returns the index of the tab under a mouse event among n tabs.
// It needs the last frame to have gone through zone.Scan.
func HitTest(msg tea.MouseMsg, n int) (int, bool) {
	for i := range n {
		if z := zone.Get(ZoneID(i)); z != nil && z.InBounds(msg) {
			return i, true
		}
	}
	return 0, false
}
