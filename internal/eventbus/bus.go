// Package eventbus merges terminal input and a periodic tick into a single
// ordered stream drained by exactly one consumer.
//
// Buffering is unbounded so producers never block; events from one source
// keep their order, across sources they are interleaved by arrival.
package eventbus

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/biliterm/internal/log"
)

// ErrClosed is returned by Next once the bus is closed and drained.
var ErrClosed = errors.New("eventbus: closed")

// Kind identifies where an event came from.
type Kind int

const (
	KindInput Kind = iota
	KindTick
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Event is one item on the bus. Input carries the raw input message and is
// nil for ticks.
type Event struct {
	Kind  Kind
	Input tea.Msg
	Time  time.Time
}

// InputSource yields raw input events. A per-event error is logged and
// skipped; io.EOF or ErrClosed stops the input producer.
type InputSource interface {
	Next(ctx context.Context) (tea.Msg, error)
}

// Bus is the merged event stream.
type Bus struct {
	q      *queue[Event]
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New starts the input and tick producers. A non-positive tick disables ticks.
func New(ctx context.Context, input InputSource, tick time.Duration) *Bus {
	ctx, cancel := context.WithCancel(ctx)
	b := &Bus{
		q:      newQueue[Event](),
		cancel: cancel,
	}

	if input != nil {
		b.wg.Add(1)
		go b.pumpInput(ctx, input)
	}
	if tick > 0 {
		b.wg.Add(1)
		go b.pumpTicks(ctx, tick)
	}
	return b
}

func (b *Bus) pumpInput(ctx context.Context, input InputSource) {
	defer b.wg.Done()
	for {
		msg, err := input.Next(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrClosed) {
				log.Debug(log.CatBus, "input source ended")
				return
			}
			log.Warn(log.CatBus, "input event error", "error", err)
			continue
		}
		if !b.q.push(Event{Kind: KindInput, Input: msg, Time: time.Now()}) {
			return
		}
	}
}

func (b *Bus) pumpTicks(ctx context.Context, every time.Duration) {
	defer b.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if !b.q.push(Event{Kind: KindTick, Time: t}) {
				return
			}
		}
	}
}

// Next blocks until the next event is available. It is the only place the
// consumer waits.
func (b *Bus) Next(ctx context.Context) (Event, error) {
	return b.q.pop(ctx)
}

// Pending returns the number of queued, undelivered events.
func (b *Bus) Pending() int {
	return b.q.len()
}

// Close stops the producers and waits for them to exit. Events already
// queued can still be drained with Next.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.cancel()
		b.q.close()
		b.wg.Wait()
	})
}

// Feed is an InputSource that the UI pushes raw messages into.
type Feed struct {
	q *queue[tea.Msg]
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{q: newQueue[tea.Msg]()}
}

// Push enqueues msg without blocking. It reports false once the feed is closed.
func (f *Feed) Push(msg tea.Msg) bool {
	return f.q.push(msg)
}

// Next implements InputSource.
func (f *Feed) Next(ctx context.Context) (tea.Msg, error) {
	return f.q.pop(ctx)
}

// Close ends the feed. Pending messages are still delivered.
func (f *Feed) Close() {
	f.q.close()
}

// ListenCmd returns a tea.Cmd that waits for the next bus event and delivers
// it as a tea.Msg. It returns nil when the bus is closed or ctx is done, which
// ends the listen chain.
func ListenCmd(ctx context.Context, b *Bus) tea.Cmd {
	return func() tea.Msg {
		ev, err := b.Next(ctx)
		if err != nil {
			return nil
		}
		return ev
	}
}
