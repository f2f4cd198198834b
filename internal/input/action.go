package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// ActionKind enumerates the parameterized commands the prompt can build.
type ActionKind int

const (
	ActionOpenRoom ActionKind = iota
	ActionSendMessage
)

// Action is a prompt target. RoomID is set for ActionSendMessage.
type Action struct {
	Kind   ActionKind
	RoomID uint64
}

// OpenRoom asks for a live room id.
func OpenRoom() Action {
	return Action{Kind: ActionOpenRoom}
}

// SendMessage composes a danmaku for roomID.
func SendMessage(roomID uint64) Action {
	return Action{Kind: ActionSendMessage, RoomID: roomID}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionOpenRoom:
		return "open"
	case ActionSendMessage:
		return fmt.Sprintf("send %d", a.RoomID)
	default:
		return "unknown"
	}
}

// Param names the value the prompt expects.
func (a Action) Param() string {
	switch a.Kind {
	case ActionOpenRoom:
		return "roomid"
	case ActionSendMessage:
		return "message"
	default:
		return ""
	}
}

// Command is a parsed, ready to dispatch prompt result.
type Command interface {
	isCommand()
}

// OpenRoomCommand opens a live room tab.
type OpenRoomCommand struct {
	RoomID uint64
}

// SendMessageCommand sends Text to the live room RoomID.
type SendMessageCommand struct {
	RoomID uint64
	Text   string
}

func (OpenRoomCommand) isCommand()    {}
func (SendMessageCommand) isCommand() {}

var (
	ErrEmpty   = errors.New("empty input")
	ErrTooLong = errors.New("message too long")
	ErrZeroID  = errors.New("room id must be positive")
)

// ParseError reports a prompt buffer that does not fit its action.
type ParseError struct {
	Action Action
	Input  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q: %v", e.Action, e.Action.Param(), e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parse validates buf against the action's expected shape.
func parse(a Action, buf string, maxLen int) (Command, error) {
	switch a.Kind {
	case ActionOpenRoom:
		raw := strings.TrimSpace(buf)
		if raw == "" {
			return nil, &ParseError{Action: a, Input: buf, Err: ErrEmpty}
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) {
				err = numErr.Err
			}
			return nil, &ParseError{Action: a, Input: buf, Err: err}
		}
		if id == 0 {
			return nil, &ParseError{Action: a, Input: buf, Err: ErrZeroID}
		}
		return OpenRoomCommand{RoomID: id}, nil

	case ActionSendMessage:
		text := strings.TrimSpace(buf)
		if text == "" {
			return nil, &ParseError{Action: a, Input: buf, Err: ErrEmpty}
		}
		if maxLen > 0 && uniseg.GraphemeClusterCount(text) > maxLen {
			return nil, &ParseError{Action: a, Input: buf, Err: fmt.Errorf("%w (max %d)", ErrTooLong, maxLen)}
		}
		return SendMessageCommand{RoomID: a.RoomID, Text: text}, nil

	default:
		return nil, &ParseError{Action: a, Input: buf, Err: fmt.Errorf("unknown action %d", a.Kind)}
	}
}
