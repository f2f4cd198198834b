// Package pubsub provides a generic publish/subscribe event system and the
// glue to receive its events in a Bubble Tea update loop.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// AppendedEvent carries a new item of a stream, such as a log entry.
	AppendedEvent EventType = "appended"
	// ChangedEvent carries the new value of a piece of state, such as the
	// logged in account.
	ChangedEvent EventType = "changed"
)

// Event represents a published event with a typed payload. Seq increases by
// one per Publish on the same broker, so a gap means events were dropped.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Seq       uint64
	Timestamp time.Time
}

// Subscriber is the read side of a Broker.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
