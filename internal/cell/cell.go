// Package cell provides a single-slot latest-value container.
//
// A cell always holds a value: it is seeded at construction and overwritten
// by exactly one writer. Readers never block the writer or each other; a
// slow reader may skip intermediate values and only sees the latest one.
package cell

import "sync/atomic"

type slot[T any] struct {
	value   T
	version uint64
}

type cell[T any] struct {
	current atomic.Pointer[slot[T]]
}

// Writer is the write half of a cell. It must be owned by a single goroutine.
type Writer[T any] struct {
	c *cell[T]
}

// Reader is the read half of a cell. It is safe for concurrent use.
type Reader[T any] struct {
	c *cell[T]
}

// New creates a cell seeded with initial and returns its two halves.
func New[T any](initial T) (*Writer[T], *Reader[T]) {
	c := &cell[T]{}
	c.current.Store(&slot[T]{value: initial})
	return &Writer[T]{c: c}, &Reader[T]{c: c}
}

// Write replaces the current value.
func (w *Writer[T]) Write(value T) {
	prev := w.c.current.Load()
	w.c.current.Store(&slot[T]{value: value, version: prev.version + 1})
}

// Read returns the latest value.
func (r *Reader[T]) Read() T {
	return r.c.current.Load().value
}

// Version returns the number of writes observed so far. It lets callers skip
// work when nothing changed since their last read.
func (r *Reader[T]) Version() uint64 {
	return r.c.current.Load().version
}
