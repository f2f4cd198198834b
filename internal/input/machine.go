// Package input implements the prompt state machine: plain navigation
// (Normal) or composing a parameterized action (Editing).
package input

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/biliterm/internal/log"
)

// Mode is the machine state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
)

// DefaultMaxMessageLength is the danmaku length limit for regular users.
const DefaultMaxMessageLength = 40

// Machine holds the prompt state. The buffer only exists while editing.
type Machine struct {
	mode   Mode
	action Action
	buffer string
	maxLen int
}

// New creates a machine in Normal mode. maxMessageLen bounds composed
// messages in graphemes; zero disables the check.
func New(maxMessageLen int) *Machine {
	return &Machine{maxLen: maxMessageLen}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Editing reports whether an action is being composed.
func (m *Machine) Editing() bool { return m.mode == ModeEditing }

// Action returns the action being composed.
func (m *Machine) Action() Action { return m.action }

// Buffer returns the text typed so far.
func (m *Machine) Buffer() string { return m.buffer }

// Begin enters Editing for a with an empty buffer. It is ignored while
// already editing.
func (m *Machine) Begin(a Action) bool {
	if m.mode == ModeEditing {
		return false
	}
	m.mode = ModeEditing
	m.action = a
	m.buffer = ""
	log.Debug(log.CatInput, "prompt opened", "action", a.String())
	return true
}

// Append adds text to the buffer.
func (m *Machine) Append(s string) {
	if m.mode != ModeEditing {
		return
	}
	m.buffer += s
}

// Backspace removes the last grapheme. It is a no-op on an empty buffer.
func (m *Machine) Backspace() {
	if m.mode != ModeEditing || m.buffer == "" {
		return
	}
	last := 0
	rest := m.buffer
	state := -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		if len(rest) == 0 {
			last = len(cluster)
		}
	}
	m.buffer = m.buffer[:len(m.buffer)-last]
}

// Cancel discards the buffer and returns to Normal.
func (m *Machine) Cancel() {
	if m.mode != ModeEditing {
		return
	}
	log.Debug(log.CatInput, "prompt cancelled", "action", m.action.String())
	m.reset()
}

// Commit parses the buffer and returns to Normal whatever the outcome.
// On failure it returns a *ParseError and no command.
func (m *Machine) Commit() (Command, error) {
	if m.mode != ModeEditing {
		return nil, nil
	}
	action, buf := m.action, m.buffer
	m.reset()

	cmd, err := parse(action, buf, m.maxLen)
	if err != nil {
		log.Debug(log.CatInput, "prompt rejected", "action", action.String(), "error", err)
		return nil, err
	}
	log.Debug(log.CatInput, "prompt committed", "action", action.String())
	return cmd, nil
}

// Prompt renders the prompt line, e.g. "[open]roomid:42".
func (m *Machine) Prompt() string {
	if m.mode != ModeEditing {
		return ""
	}
	return fmt.Sprintf("[%s]%s:%s", m.action, m.action.Param(), m.buffer)
}

func (m *Machine) reset() {
	m.mode = ModeNormal
	m.action = Action{}
	m.buffer = ""
}

// Result is the outcome of feeding a key to the machine while editing.
type Result struct {
	// Consumed is false when the key was not for the prompt.
	Consumed bool
	// Command is set after a successful commit.
	Command Command
	// Err is set after a rejected commit.
	Err error
}

// HandleKey applies a key press while editing. In Normal mode it consumes
// nothing so the caller can route the key to navigation.
func (m *Machine) HandleKey(msg tea.KeyMsg) Result {
	if m.mode != ModeEditing {
		return Result{}
	}

	switch msg.Type {
	case tea.KeyRunes:
		if !msg.Alt {
			m.Append(string(msg.Runes))
		}
	case tea.KeySpace:
		m.Append(" ")
	case tea.KeyBackspace:
		m.Backspace()
	case tea.KeyEnter:
		cmd, err := m.Commit()
		return Result{Consumed: true, Command: cmd, Err: err}
	case tea.KeyEsc:
		m.Cancel()
	case tea.KeyCtrlC:
		// Quit stays reachable from the prompt.
		return Result{}
	}
	return Result{Consumed: true}
}
