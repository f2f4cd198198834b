package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/biliterm/internal/flags"
	"github.com/zjrosen/biliterm/internal/liveroom"
	"github.com/zjrosen/biliterm/internal/login"
	"github.com/zjrosen/biliterm/internal/pages"
	"github.com/zjrosen/biliterm/internal/session"
	"github.com/zjrosen/biliterm/internal/ui/styles"
	"github.com/zjrosen/biliterm/internal/ui/tabbar"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	body := m.renderBody(bodyHeight)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.opts.Debug && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

// renderHeader draws the tab bar with the account badge on the right.
func (m Model) renderHeader() string {
	badge := styles.MutedStyle.Render("guest")
	if m.account.LoggedIn {
		badge = styles.DanmakuUserStyle.Render("uid " + m.account.UID)
	}
	barWidth := max(m.width-lipgloss.Width(badge)-1, 0)

	cur, _ := m.tabs.CurrentIndex()
	list := m.tabs.Tabs()
	entries := make([]tabbar.Tab, len(list))
	for i, tab := range list {
		entries[i] = tabbar.Tab{Label: tab.Label, Status: pages.Status(tab.Handle), Active: i == cur}
	}

	bar := tabbar.Render(entries, barWidth)
	gap := max(m.width-lipgloss.Width(bar)-lipgloss.Width(badge), 1)
	return bar + strings.Repeat(" ", gap) + badge
}

// renderFooter draws the prompt or notice line and the optional help line.
func (m Model) renderFooter() string {
	status := " "
	switch {
	case m.input.Editing():
		status = styles.PromptStyle.Render(m.input.Prompt()) + "█"
	case m.notice.Visible():
		status = m.notice.View(m.width)
	}
	if !m.opts.ShowHelp {
		return status
	}

	helpView := m.helpLine.View(m.keys)
	if m.input.Editing() {
		helpView = m.helpLine.View(m.prompt)
	}
	return status + "\n" + helpView
}

func (m Model) renderBody(height int) string {
	tab, ok := m.tabs.Current()
	if !ok {
		return m.home.View(m.width)
	}
	return m.renderPage(tab.Handle, m.width, height)
}

// renderPage draws the body of a tab.
func (m Model) renderPage(p pages.Page, width, height int) string {
	switch p := p.(type) {
	case *pages.LiveRoom:
		return m.renderLiveRoom(p, width, height)
	case *pages.Login:
		return renderLogin(p, width, height)
	default:
		return ""
	}
}

func (m Model) renderLiveRoom(p *pages.LiveRoom, width, height int) string {
	state := p.Handle.Peek()
	inner := max(width-2, 1)
	rows := max(height-2, 1)

	roomEvents := m.opts.Flags.Enabled(flags.FlagRoomEvents)

	lines := pages.Cached(p, inner, rows, func() []string {
		feed := p.Handle.Peek().Events
		// Wrap newest first and stop once the panel is full.
		var lines []string
		for i := len(feed) - 1; i >= 0 && len(lines) < rows; i-- {
			ev := feed[i]
			if !roomEvents && ev.Kind != liveroom.KindDanmaku {
				continue
			}
			wrapped := strings.Split(wrapLine(formatEvent(ev, m.opts.ShowTimestamp), inner), "\n")
			lines = append(wrapped, lines...)
		}
		if len(lines) == 0 {
			lines = []string{styles.MutedStyle.Render("Waiting for danmaku…")}
		}
		return lines
	})

	return styles.RenderPanel(lines, pages.Label(p), roomHint(state, p), width, height, true)
}

// roomHint summarises the feed for the panel border.
func roomHint(state liveroom.State, p *pages.LiveRoom) string {
	hint := fmt.Sprintf("人气 %s · %d", styles.FormatCount(uint64(state.Popularity)), state.Received)
	if pages.Status(p) == session.Finished {
		if err := pages.Err(p); err != nil {
			return hint + " · disconnected: " + err.Error()
		}
		return hint + " · stream ended"
	}
	return hint
}

// wrapLine wraps on word boundaries and hard-breaks what still overflows,
// which is most CJK text.
func wrapLine(s string, width int) string {
	return wrap.String(wordwrap.String(s, width), width)
}

func formatEvent(ev liveroom.Event, timestamp bool) string {
	var line string
	switch ev.Kind {
	case liveroom.KindDanmaku:
		line = styles.DanmakuUserStyle.Render(ev.User) + ": " + styles.DanmakuTextStyle.Render(ev.Text)
	case liveroom.KindGift:
		line = styles.GiftStyle.Render(fmt.Sprintf("%s sent %s ×%d", ev.User, ev.Gift, ev.Count))
	case liveroom.KindEnter:
		line = styles.EnterStyle.Render(ev.User + " entered the room")
	default:
		line = styles.MutedStyle.Render(ev.Text)
	}
	if timestamp && !ev.Time.IsZero() {
		line = styles.TimestampStyle.Render(ev.Time.Format("15:04:05")) + " " + line
	}
	return line
}

func renderLogin(p *pages.Login, width, height int) string {
	state := p.Handle.Peek()

	hintStyle := styles.StatusBarStyle
	if state.Stage == login.UnexpectedCode {
		hintStyle = styles.ErrorStyle
	}
	parts := []string{hintStyle.Render(state.Hint())}

	if err := p.Handle.Err(); err != nil {
		parts = append(parts, styles.ErrorStyle.Render("Login failed: "+err.Error()))
	} else if !state.Stage.Terminal() && state.QRCodeURL != "" {
		qr := pages.Cached(p, 0, 0, func() []string {
			return []string{login.RenderQRCode(p.Handle.Peek().QRCodeURL)}
		})
		parts = append(parts, "", qr[0])
	}
	if state.Stage.Terminal() || p.Handle.Status() != session.Running {
		parts = append(parts, "", styles.MutedStyle.Render("This tab can be closed"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(parts, "\n"))
}
