// Package session runs cancellable background tasks that publish the latest
// state of a session through a cell.
//
// A Task pulls domain events from a Source, folds them into a state with a
// Reducer and writes every changed state into its cell. Consumers hold a
// Handle which can peek at the latest state and cancel the task. Cancel never
// waits for the task to stop.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/biliterm/internal/cell"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/tracing"
)

const tracerName = "github.com/zjrosen/biliterm/internal/session"

// Source yields domain events for a session. Next blocks until an event is
// available, ctx is cancelled, or the source ends. A source that ends returns
// io.EOF. Sources that also implement io.Closer are closed when the task stops.
type Source[E any] interface {
	Next(ctx context.Context) (E, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[E any] func(ctx context.Context) (E, error)

// Next calls f(ctx).
func (f SourceFunc[E]) Next(ctx context.Context) (E, error) {
	return f(ctx)
}

// Reducer computes the next state from the previous one and an event.
// It must not mutate prev, since readers may still hold it. The boolean
// reports whether the state changed and needs to be published.
type Reducer[S, E any] func(prev S, event E) (S, bool)

// Task binds a source, an initial state and a reducer.
type Task[S, E any] struct {
	name    string
	source  Source[E]
	initial S
	reduce  Reducer[S, E]
}

// NewTask creates a task. The source must already be connected.
func NewTask[S, E any](name string, source Source[E], initial S, reduce Reducer[S, E]) *Task[S, E] {
	return &Task[S, E]{
		name:    name,
		source:  source,
		initial: initial,
		reduce:  reduce,
	}
}

// Run starts the task on its own goroutine and returns immediately.
func (t *Task[S, E]) Run(ctx context.Context) *Handle[S] {
	ctx, cancel := context.WithCancel(ctx)
	w, r := cell.New(t.initial)

	h := &Handle[S]{
		id:     uuid.NewString(),
		name:   t.name,
		reader: r,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if c, ok := t.source.(io.Closer); ok {
		// Unblocks sources that don't watch ctx themselves.
		context.AfterFunc(ctx, func() { _ = c.Close() })
	}

	log.Debug(log.CatSession, "session started", "id", h.id, "name", t.name)
	go t.loop(ctx, w, h)
	return h
}

func (t *Task[S, E]) loop(ctx context.Context, w *cell.Writer[S], h *Handle[S]) {
	defer close(h.done)
	defer h.cancel()

	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanSessionRun,
		trace.WithAttributes(
			attribute.String(tracing.AttrSessionID, h.id),
			attribute.String(tracing.AttrSessionName, t.name),
		))
	events := 0
	defer func() {
		span.SetAttributes(
			attribute.Int(tracing.AttrSessionEvents, events),
			attribute.String(tracing.AttrSessionStatus, h.Status().String()),
		)
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("session %s panicked: %v", t.name, r)
			log.ErrorErr(log.CatSession, "session task panicked", err, "id", h.id, "trace", tracing.TraceID(ctx))
			span.AddEvent(tracing.EventPanic, trace.WithAttributes(attribute.String("panic", fmt.Sprint(r))))
			span.SetStatus(codes.Error, "panic")
			h.finish(Finished, err)
		}
	}()

	stop := func() {
		h.finish(Cancelled, nil)
		log.Debug(log.CatSession, "session cancelled", "id", h.id, "events", events)
	}

	state := t.initial
	for {
		event, err := t.source.Next(ctx)
		if ctx.Err() != nil {
			stop()
			return
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				span.AddEvent(tracing.EventSourceEnded)
				log.Debug(log.CatSession, "session source ended", "id", h.id, "events", events)
			} else {
				span.RecordError(err)
				log.Warn(log.CatSession, "session source failed", "id", h.id, "error", err, "trace", tracing.TraceID(ctx))
			}
			h.finish(Finished, err)
			return
		}

		events++
		next, changed := t.reduce(state, event)
		if !changed {
			continue
		}
		// Cancel may have landed while reducing.
		if ctx.Err() != nil || h.Status() == Cancelled {
			stop()
			return
		}
		state = next
		w.Write(state)
	}
}

// Handle is the consumer side of a running task.
type Handle[S any] struct {
	id     string
	name   string
	reader *cell.Reader[S]
	cancel context.CancelFunc
	status atomic.Int32
	err    error
	done   chan struct{}
}

// ID returns the unique session id.
func (h *Handle[S]) ID() string { return h.id }

// Name returns the task name.
func (h *Handle[S]) Name() string { return h.name }

// Peek returns the latest published state.
func (h *Handle[S]) Peek() S {
	return h.reader.Read()
}

// Version returns the number of states published so far.
func (h *Handle[S]) Version() uint64 {
	return h.reader.Version()
}

// Cancel requests the task to stop. It is idempotent, does not wait, and is
// a no-op once the task has finished on its own.
func (h *Handle[S]) Cancel() {
	if h.status.CompareAndSwap(int32(Running), int32(Cancelled)) {
		log.Debug(log.CatSession, "session cancel requested", "id", h.id)
	}
	h.cancel()
}

// Status returns the current lifecycle state.
func (h *Handle[S]) Status() Status {
	return Status(h.status.Load())
}

// Done is closed once the task goroutine has exited.
func (h *Handle[S]) Done() <-chan struct{} {
	return h.done
}

// Err returns the error that finished the task, if any. It is nil while the
// task is running, after a clean end, and after cancellation.
func (h *Handle[S]) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// finish records the terminal state. Only the task goroutine calls it, before
// done is closed.
func (h *Handle[S]) finish(status Status, err error) {
	h.err = err
	h.status.CompareAndSwap(int32(Running), int32(status))
}
