// Package app contains the root application model.
//
// Raw terminal messages are not handled where bubbletea delivers them: they
// are pushed into an event bus that also carries the periodic tick, and the
// model drains that bus one event at a time. Session tasks never touch the
// model; rendering peeks at their latest snapshot.
package app

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/biliterm/internal/bilibili"
	"github.com/zjrosen/biliterm/internal/eventbus"
	"github.com/zjrosen/biliterm/internal/flags"
	"github.com/zjrosen/biliterm/internal/input"
	"github.com/zjrosen/biliterm/internal/keys"
	"github.com/zjrosen/biliterm/internal/liveroom"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/login"
	"github.com/zjrosen/biliterm/internal/pages"
	"github.com/zjrosen/biliterm/internal/pubsub"
	"github.com/zjrosen/biliterm/internal/tabs"
	helpoverlay "github.com/zjrosen/biliterm/internal/ui/help"
	"github.com/zjrosen/biliterm/internal/ui/logoverlay"
	"github.com/zjrosen/biliterm/internal/ui/markdown"
	"github.com/zjrosen/biliterm/internal/ui/notice"
	"github.com/zjrosen/biliterm/internal/ui/tabbar"
)

// Backend is the part of the web client the UI drives.
type Backend interface {
	liveroom.API
	login.Passport
	SendDanmaku(ctx context.Context, roomID uint64, text string) error
}

// Options configures the application model. Zero values use the defaults
// of the packages they are passed to.
type Options struct {
	Keys keys.KeyMap

	// Rooms are opened when the program starts.
	Rooms []uint64

	TickInterval      time.Duration
	BufferSize        int
	HeartbeatInterval time.Duration
	PollInterval      time.Duration
	MaxMessageLength  int
	NoticeTTL         time.Duration

	LoginOnStart  bool
	ShowHelp      bool
	ShowTimestamp bool
	MarkdownStyle string

	// Debug enables the log overlay (ctrl+x).
	Debug bool

	// Flags toggles optional behavior; nil uses flags.Defaults.
	Flags *flags.Registry

	// Accounts publishes credential changes; nil disables the account badge.
	Accounts *pubsub.Broker[bilibili.Account]
	Account  bilibili.Account

	// Dial replaces the danmaku dialer, mainly for tests.
	Dial func(ctx context.Context, cfg bilibili.DialConfig) (liveroom.Stream, error)
}

// Model is the root application state.
type Model struct {
	opts    Options
	backend Backend
	keys    keys.KeyMap
	prompt  keys.PromptKeyMap

	ctx    context.Context
	cancel context.CancelFunc

	// Every raw message goes through feed and comes back from bus.
	feed *eventbus.Feed
	bus  *eventbus.Bus

	tabs  *tabs.Registry[pages.Page]
	input *input.Machine

	notice   notice.Model
	helpLine help.Model
	help     helpoverlay.Model
	showHelp bool
	home     *markdown.Page

	logOverlay  logoverlay.Model
	logListener *log.LogListener

	account         bilibili.Account
	accountListener *pubsub.ContinuousListener[bilibili.Account]

	width  int
	height int

	now func() time.Time
}

// New creates the application model and starts its event bus.
func New(backend Backend, opts Options) Model {
	if len(opts.Keys.Quit.Keys()) == 0 {
		opts.Keys = keys.DefaultKeyMap()
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = input.DefaultMaxMessageLength
	}
	if opts.Flags == nil {
		opts.Flags = flags.New(flags.Defaults())
	}
	opts.Keys.Debug.SetEnabled(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	feed := eventbus.NewFeed()

	m := Model{
		opts:       opts,
		backend:    backend,
		keys:       opts.Keys,
		prompt:     keys.DefaultPromptKeyMap(),
		ctx:        ctx,
		cancel:     cancel,
		feed:       feed,
		bus:        eventbus.New(ctx, feed, opts.TickInterval),
		tabs:       tabs.NewRegistry[pages.Page](),
		input:      input.New(opts.MaxMessageLength),
		notice:     notice.New(opts.NoticeTTL),
		helpLine:   help.New(),
		help:       helpoverlay.New(opts.Keys),
		home:       markdown.NewPage(homeMarkdown(opts.Keys, opts.Rooms), opts.MarkdownStyle),
		logOverlay: logoverlay.New(),
		account:    opts.Account,
		now:        time.Now,
	}
	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}
	if opts.Accounts != nil {
		m.accountListener = pubsub.NewContinuousListener(ctx, opts.Accounts)
	}
	return m
}

// Init starts draining the bus and opens the startup rooms.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{eventbus.ListenCmd(m.ctx, m.bus)}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if m.accountListener != nil {
		cmds = append(cmds, m.accountListener.Listen())
	}
	for _, id := range m.opts.Rooms {
		cmds = append(cmds, m.openRoomCmd(id))
	}
	if m.opts.LoginOnStart && !m.account.LoggedIn {
		cmds = append(cmds, func() tea.Msg { return startLoginMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg:
		if !m.feed.Push(msg) {
			log.Debug(log.CatBus, "input dropped after shutdown")
		}
		return m, nil

	case eventbus.Event:
		var cmd tea.Cmd
		switch msg.Kind {
		case eventbus.KindTick:
			m = m.handleTick(msg.Time)
		default:
			m, cmd = m.handleInput(msg.Input)
		}
		if m.ctx.Err() != nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, eventbus.ListenCmd(m.ctx, m.bus))

	case roomOpenedMsg:
		return m.handleRoomOpened(msg), nil

	case roomFailedMsg:
		log.ErrorErr(log.CatRoom, "open room failed", msg.err, "room", msg.roomID)
		return m.showNotice(msg.err.Error(), notice.LevelError), nil

	case sendResultMsg:
		return m.handleSendResult(msg), nil

	case startLoginMsg:
		return m.openLogin(), nil

	case pubsub.Event[bilibili.Account]:
		m = m.handleAccount(msg.Payload)
		return m, m.accountListener.Listen()

	case log.LogEvent:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, tea.Batch(cmd, m.logListener.Listen())

	case logoverlay.CloseMsg:
		m.logOverlay.Hide()
		return m, nil
	}
	return m, nil
}

func (m Model) handleTick(now time.Time) Model {
	m.notice = m.notice.Expire(now)
	return m
}

// handleInput applies one raw input message taken from the bus.
func (m Model) handleInput(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.helpLine.Width = msg.Width
		m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		if !m.opts.Flags.Enabled(flags.FlagMouse) || m.logOverlay.Visible() || m.input.Editing() {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if i, ok := tabbar.HitTest(msg, m.tabs.Len()); ok {
			m.tabs.Select(i)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.opts.Debug && key.Matches(msg, m.keys.Debug) {
		m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		if cmd != nil {
			return m, m.quitOr(cmd)
		}
		return m, nil
	}

	if m.input.Editing() {
		res := m.input.HandleKey(msg)
		if res.Consumed {
			return m.handlePromptResult(res)
		}
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Help), msg.Type == tea.KeyEsc:
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.NextTab):
		m.tabs.Next()

	case key.Matches(msg, m.keys.PrevTab):
		m.tabs.Prev()

	case key.Matches(msg, m.keys.CloseTab):
		if tab, ok := m.tabs.CloseCurrent(); ok {
			log.Info(log.CatTabs, "tab closed", "label", tab.Label, "tabs", m.tabs.Len())
		}

	case key.Matches(msg, m.keys.OpenRoom):
		m.input.Begin(input.OpenRoom())

	case key.Matches(msg, m.keys.Compose):
		if tab, ok := m.tabs.Current(); ok {
			if room, ok := tab.Handle.(*pages.LiveRoom); ok {
				m.input.Begin(input.SendMessage(room.RoomID))
			}
		}

	case key.Matches(msg, m.keys.Login):
		return m.openLogin(), nil
	}
	return m, nil
}

// quitOr turns a child's quit request into a full shutdown.
func (m Model) quitOr(cmd tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			m.Close()
		}
		return msg
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	log.Info(log.CatUI, "quitting", "tabs", m.tabs.Len())
	m.Close()
	return m, tea.Quit
}

func (m Model) handlePromptResult(res input.Result) (Model, tea.Cmd) {
	if res.Err != nil {
		return m.showNotice(res.Err.Error(), notice.LevelError), nil
	}
	switch cmd := res.Command.(type) {
	case input.OpenRoomCommand:
		if idx, ok := m.findRoom(cmd.RoomID); ok {
			m.tabs.Select(idx)
			return m.showNotice("Room "+strconv.FormatUint(cmd.RoomID, 10)+" is already open", notice.LevelInfo), nil
		}
		m = m.showNotice("Connecting to room "+strconv.FormatUint(cmd.RoomID, 10)+"…", notice.LevelInfo)
		return m, m.openRoomCmd(cmd.RoomID)

	case input.SendMessageCommand:
		return m, m.sendCmd(cmd.RoomID, cmd.Text)
	}
	return m, nil
}

// findRoom returns the tab already showing id, by long or short id.
func (m Model) findRoom(id uint64) (int, bool) {
	for i, tab := range m.tabs.Tabs() {
		if room, ok := tab.Handle.(*pages.LiveRoom); ok && (room.RoomID == id || room.ShortID == id) {
			return i, true
		}
	}
	return 0, false
}

func (m Model) showNotice(text string, level notice.Level) Model {
	m.notice = m.notice.Show(text, level, m.now())
	return m
}

func (m Model) handleAccount(account bilibili.Account) Model {
	was := m.account.LoggedIn
	m.account = account
	if account.LoggedIn && !was {
		m = m.showNotice("Logged in as "+account.UID, notice.LevelInfo)
	}
	return m
}

// Close cancels every session and stops the event bus. It is safe to call
// more than once.
func (m Model) Close() {
	m.tabs.CancelAll()
	m.cancel()
	m.feed.Close()
	m.bus.Close()
	if n := m.bus.Pending(); n > 0 {
		log.Debug(log.CatBus, "bus closed with undelivered events", "pending", n)
	}
}
