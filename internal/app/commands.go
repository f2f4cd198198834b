package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/biliterm/internal/bilibili"
	"github.com/zjrosen/biliterm/internal/liveroom"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/login"
	"github.com/zjrosen/biliterm/internal/pages"
	"github.com/zjrosen/biliterm/internal/session"
	"github.com/zjrosen/biliterm/internal/ui/notice"
)

// sendTimeout bounds a single danmaku send.
const sendTimeout = 10 * time.Second

// roomOpenedMsg carries a connected source back to the update loop.
type roomOpenedMsg struct {
	requested uint64
	source    *liveroom.Source
}

// roomFailedMsg reports a room that could not be opened. No tab exists
// for it.
type roomFailedMsg struct {
	roomID uint64
	err    error
}

type sendResultMsg struct {
	roomID uint64
	err    error
}

type startLoginMsg struct{}

// openRoomCmd connects to a room off the update loop.
func (m Model) openRoomCmd(roomID uint64) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	opts := liveroom.Options{
		UID:       accountUID(m.account),
		Heartbeat: m.opts.HeartbeatInterval,
		Dial:      m.opts.Dial,
	}
	return func() tea.Msg {
		src, err := liveroom.Open(ctx, backend, roomID, opts)
		if err != nil {
			return roomFailedMsg{roomID: roomID, err: err}
		}
		return roomOpenedMsg{requested: roomID, source: src}
	}
}

// handleRoomOpened starts the session for a connected room and gives it a
// tab. A source arriving after shutdown, or for a room that already has a
// tab, is closed instead.
func (m Model) handleRoomOpened(msg roomOpenedMsg) Model {
	src := msg.source
	if m.ctx.Err() != nil {
		_ = src.Close()
		return m
	}
	if idx, ok := m.findRoom(src.RoomID()); ok {
		_ = src.Close()
		m.tabs.Select(idx)
		log.Debug(log.CatTabs, "dropped duplicate room connection", "room", src.RoomID(), "requested", msg.requested)
		return m.showNotice("Room "+strconv.FormatUint(msg.requested, 10)+" is already open", notice.LevelInfo)
	}

	name := "room " + strconv.FormatUint(src.RoomID(), 10)
	h := session.NewTask[liveroom.State, liveroom.Event](name, src, liveroom.NewState(src.RoomID()), liveroom.Reducer(m.opts.BufferSize)).Run(m.ctx)
	page := &pages.LiveRoom{RoomID: src.RoomID(), ShortID: src.Room().ShortID, Handle: h}
	label := pages.Label(page)
	m.tabs.Register(label, page)

	log.Info(log.CatTabs, "tab opened", "label", label, "session", h.ID(), "tabs", m.tabs.Len())
	return m.showNotice("Connected to room "+strconv.FormatUint(msg.requested, 10), notice.LevelInfo)
}

// sendCmd posts a danmaku off the update loop.
func (m Model) sendCmd(roomID uint64, text string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		return sendResultMsg{roomID: roomID, err: backend.SendDanmaku(ctx, roomID, text)}
	}
}

func (m Model) handleSendResult(msg sendResultMsg) Model {
	switch {
	case msg.err == nil:
		return m.showNotice("Sent", notice.LevelInfo)
	case errors.Is(msg.err, bilibili.ErrNotLoggedIn):
		return m.showNotice("Not logged in, press "+m.keys.Login.Help().Key+" to scan a QR code", notice.LevelError)
	default:
		log.ErrorErr(log.CatRoom, "send danmaku failed", msg.err, "room", msg.roomID)
		return m.showNotice("Send failed: "+msg.err.Error(), notice.LevelError)
	}
}

// openLogin selects the running login tab or starts a new login session.
func (m Model) openLogin() Model {
	for i, tab := range m.tabs.Tabs() {
		if page, ok := tab.Handle.(*pages.Login); ok && page.Handle.Status() == session.Running {
			m.tabs.Select(i)
			return m
		}
	}

	src := login.NewSource(m.backend, m.opts.PollInterval)
	h := session.NewTask[login.State, login.Event]("login", src, login.NewState(), login.Reduce).Run(m.ctx)
	page := &pages.Login{Handle: h}
	m.tabs.Register(pages.Label(page), page)

	log.Info(log.CatTabs, "tab opened", "label", pages.Label(page), "session", h.ID(), "tabs", m.tabs.Len())
	return m
}

// accountUID is the numeric uid for the danmaku handshake; 0 is a guest.
func accountUID(a bilibili.Account) uint64 {
	if !a.LoggedIn {
		return 0
	}
	uid, err := strconv.ParseUint(a.UID, 10, 64)
	if err != nil {
		return 0
	}
	return uid
}
