// Package liveroom turns a live room's danmaku stream into session state.
package liveroom

import "time"

// DefaultBufferSize bounds the events kept per room.
const DefaultBufferSize = 64

// Kind tags an Event.
type Kind int

const (
	KindDanmaku Kind = iota
	KindGift
	KindEnter
	KindPopularity
)

// Event is one item of a live room feed. Fields are set according to Kind.
type Event struct {
	Kind  Kind
	Time  time.Time
	UID   uint64
	User  string
	Text  string
	Gift  string
	Count int
	Value uint32
}

// State is the snapshot published for a live room. Events is never mutated
// after publication.
type State struct {
	RoomID     uint64
	Events     []Event
	Popularity uint32
	Received   int
}

// NewState returns the empty snapshot for roomID.
func NewState(roomID uint64) State {
	return State{RoomID: roomID}
}

// Reducer folds events into a State keeping at most capacity feed events.
func Reducer(capacity int) func(State, Event) (State, bool) {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return func(prev State, ev Event) (State, bool) {
		next := prev
		if ev.Kind == KindPopularity {
			if prev.Popularity == ev.Value {
				return prev, false
			}
			next.Popularity = ev.Value
			return next, true
		}

		start := 0
		if len(prev.Events) >= capacity {
			start = len(prev.Events) - capacity + 1
		}
		events := make([]Event, 0, capacity)
		events = append(events, prev.Events[start:]...)
		next.Events = append(events, ev)
		next.Received = prev.Received + 1
		return next, true
	}
}
