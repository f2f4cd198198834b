// Package tabs keeps the ordered list of open sessions and which one is
// selected.
//
// The registry is owned by the UI loop and is not safe for concurrent use.
package tabs

import "github.com/zjrosen/biliterm/internal/log"

// Canceler is anything a tab owns that must be stopped when the tab closes.
type Canceler interface {
	Cancel()
}

// Tab pairs a display label with the handle of its session.
type Tab[H Canceler] struct {
	Label  string
	Handle H
}

// Registry is an ordered set of tabs with an optional current selection.
// current is -1 iff there are no tabs.
type Registry[H Canceler] struct {
	tabs    []Tab[H]
	current int
}

// NewRegistry creates an empty registry.
func NewRegistry[H Canceler]() *Registry[H] {
	return &Registry[H]{current: -1}
}

// Register appends a tab and selects it.
func (r *Registry[H]) Register(label string, handle H) {
	r.tabs = append(r.tabs, Tab[H]{Label: label, Handle: handle})
	r.current = len(r.tabs) - 1
	log.Debug(log.CatTabs, "tab registered", "label", label, "index", r.current)
}

// Next selects the following tab, wrapping to the first.
// With no selection it selects the first tab.
func (r *Registry[H]) Next() {
	if len(r.tabs) == 0 {
		return
	}
	if r.current < 0 {
		r.current = 0
		return
	}
	r.current = (r.current + 1) % len(r.tabs)
}

// Prev selects the preceding tab, wrapping to the last.
// With no selection it selects the last tab.
func (r *Registry[H]) Prev() {
	if len(r.tabs) == 0 {
		return
	}
	if r.current < 0 {
		r.current = len(r.tabs) - 1
		return
	}
	r.current = (r.current - 1 + len(r.tabs)) % len(r.tabs)
}

// Select makes idx current. Out of range indexes are ignored.
func (r *Registry[H]) Select(idx int) bool {
	if idx < 0 || idx >= len(r.tabs) {
		return false
	}
	r.current = idx
	return true
}

// CloseCurrent removes the selected tab and cancels its handle. When the
// removed tab was the last one in the list the selection wraps to 0;
// otherwise the index stays and now points at the tab that shifted into it.
func (r *Registry[H]) CloseCurrent() (Tab[H], bool) {
	if r.current < 0 || r.current >= len(r.tabs) {
		return Tab[H]{}, false
	}

	idx := r.current
	removed := r.tabs[idx]
	r.tabs = append(r.tabs[:idx], r.tabs[idx+1:]...)
	removed.Handle.Cancel()

	switch {
	case len(r.tabs) == 0:
		r.current = -1
	case idx == len(r.tabs):
		r.current = 0
	}

	log.Debug(log.CatTabs, "tab closed", "label", removed.Label, "remaining", len(r.tabs))
	return removed, true
}

// Current returns the selected tab.
func (r *Registry[H]) Current() (Tab[H], bool) {
	if r.current < 0 {
		return Tab[H]{}, false
	}
	return r.tabs[r.current], true
}

// CurrentIndex returns the selected index and whether there is a selection.
func (r *Registry[H]) CurrentIndex() (int, bool) {
	return r.current, r.current >= 0
}

// Tabs returns a copy of the tabs in display order.
func (r *Registry[H]) Tabs() []Tab[H] {
	out := make([]Tab[H], len(r.tabs))
	copy(out, r.tabs)
	return out
}

// Len returns the number of tabs.
func (r *Registry[H]) Len() int {
	return len(r.tabs)
}

// CancelAll cancels every handle and empties the registry. Used on quit.
func (r *Registry[H]) CancelAll() {
	for _, t := range r.tabs {
		t.Handle.Cancel()
	}
	r.tabs = nil
	r.current = -1
}
