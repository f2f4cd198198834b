// Package notice is the one-line status message under the tab body.
// A notice expires on its own; the app checks expiry on every tick.
package notice

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/biliterm/internal/ui/styles"
)

// Level selects the styling of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// DefaultTTL is how long a notice stays when no TTL is configured.
const DefaultTTL = 5 * time.Second

// Model holds at most one notice. A newer notice replaces the current one.
type Model struct {
	text    string
	level   Level
	expires time.Time
	ttl     time.Duration
}

// New creates an empty notice line whose messages live for ttl.
func New(ttl time.Duration) Model {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Model{ttl: ttl}
}

// Show replaces the current notice. It expires ttl after now.
func (m Model) Show(text string, level Level, now time.Time) Model {
	m.text = text
	m.level = level
	m.expires = now.Add(m.ttl)
	return m
}

// Expire clears the notice once now has reached its deadline.
func (m Model) Expire(now time.Time) Model {
	if m.text != "" && !now.Before(m.expires) {
		m.text = ""
	}
	return m
}

// Visible reports whether a notice is showing.
func (m Model) Visible() bool {
	return m.text != ""
}

// Text returns the current notice text.
func (m Model) Text() string {
	return m.text
}

// Level returns the level of the current notice.
func (m Model) Level() Level {
	return m.level
}

// View renders the notice truncated to width, or "" when none is showing.
func (m Model) View(width int) string {
	if m.text == "" {
		return ""
	}
	var (
		style  lipgloss.Style
		prefix string
	)
	switch m.level {
	case LevelError:
		style, prefix = styles.NoticeErrorStyle, "✕ "
	default:
		style, prefix = styles.NoticeInfoStyle, "• "
	}
	line := prefix + m.text
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return style.Render(line)
}
