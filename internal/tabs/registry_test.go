package tabs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeHandle struct {
	name      string
	cancelled int
}

func (h *fakeHandle) Cancel() { h.cancelled++ }

func labels(r *Registry[*fakeHandle]) []string {
	var out []string
	for _, t := range r.Tabs() {
		out = append(out, t.Label)
	}
	return out
}

func currentIndex(t *testing.T, r *Registry[*fakeHandle]) int {
	t.Helper()
	idx, ok := r.CurrentIndex()
	require.True(t, ok)
	return idx
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry[*fakeHandle]()

	r.Next()
	r.Prev()
	_, closed := r.CloseCurrent()
	_, hasCurrent := r.Current()

	require.False(t, closed)
	require.False(t, hasCurrent)
	require.Equal(t, 0, r.Len())
	require.Empty(t, r.Tabs())
	require.False(t, r.Select(0))
}

func TestRegistry_Scenario(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	h1 := &fakeHandle{name: "A"}
	h2 := &fakeHandle{name: "B"}

	r.Register("A", h1)
	require.Equal(t, 0, currentIndex(t, r))

	r.Register("B", h2)
	require.Equal(t, 1, currentIndex(t, r))

	r.Prev()
	require.Equal(t, 0, currentIndex(t, r))

	removed, ok := r.CloseCurrent()
	require.True(t, ok)
	require.Equal(t, "A", removed.Label)
	require.Equal(t, 1, h1.cancelled)
	require.Equal(t, 0, h2.cancelled)
	require.Equal(t, []string{"B"}, labels(r))
	require.Equal(t, 0, currentIndex(t, r))
}

func TestCloseCurrent_SingleTab(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	h := &fakeHandle{}
	r.Register("only", h)

	_, ok := r.CloseCurrent()
	require.True(t, ok)
	require.Equal(t, 1, h.cancelled)

	_, hasCurrent := r.CurrentIndex()
	require.False(t, hasCurrent)
	require.Empty(t, r.Tabs())
}

func TestCloseCurrent_MiddleKeepsIndex(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	for _, l := range []string{"A", "B", "C"} {
		r.Register(l, &fakeHandle{})
	}
	require.True(t, r.Select(1))

	r.CloseCurrent()
	require.Equal(t, []string{"A", "C"}, labels(r))
	require.Equal(t, 1, currentIndex(t, r))
	cur, _ := r.Current()
	require.Equal(t, "C", cur.Label)
}

func TestCloseCurrent_LastWrapsToFirst(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	for _, l := range []string{"A", "B", "C"} {
		r.Register(l, &fakeHandle{})
	}

	r.CloseCurrent()
	require.Equal(t, []string{"A", "B"}, labels(r))
	require.Equal(t, 0, currentIndex(t, r))
}

func TestNextPrev_Wrap(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	for _, l := range []string{"A", "B", "C"} {
		r.Register(l, &fakeHandle{})
	}

	r.Next()
	require.Equal(t, 0, currentIndex(t, r))
	r.Prev()
	require.Equal(t, 2, currentIndex(t, r))
}

func TestNextPrev_NoSelectionAfterRebuild(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	r.Register("A", &fakeHandle{})
	r.CloseCurrent()

	// Empty again: still no-op.
	r.Next()
	_, ok := r.CurrentIndex()
	require.False(t, ok)

	r.Register("B", &fakeHandle{})
	r.Register("C", &fakeHandle{})
	require.Equal(t, 1, currentIndex(t, r))
}

func TestNextPrev_FromNoSelection(t *testing.T) {
	r := &Registry[*fakeHandle]{
		tabs:    []Tab[*fakeHandle]{{Label: "A"}, {Label: "B"}, {Label: "C"}},
		current: -1,
	}
	r.Next()
	require.Equal(t, 0, currentIndex(t, r))

	r.current = -1
	r.Prev()
	require.Equal(t, 2, currentIndex(t, r))
}

func TestTabs_ReturnsCopy(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	r.Register("A", &fakeHandle{})

	tabs := r.Tabs()
	tabs[0].Label = "mutated"
	require.Equal(t, []string{"A"}, labels(r))
}

func TestCancelAll(t *testing.T) {
	r := NewRegistry[*fakeHandle]()
	h1, h2 := &fakeHandle{}, &fakeHandle{}
	r.Register("A", h1)
	r.Register("B", h2)

	r.CancelAll()
	require.Equal(t, 1, h1.cancelled)
	require.Equal(t, 1, h2.cancelled)
	require.Equal(t, 0, r.Len())
	_, ok := r.CurrentIndex()
	require.False(t, ok)
}

func TestProperty_NavigationStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		r := NewRegistry[*fakeHandle]()
		for i := 0; i < n; i++ {
			r.Register("tab", &fakeHandle{})
		}
		start := rapid.IntRange(0, n-1).Draw(rt, "start")
		r.Select(start)

		moves := rapid.SliceOf(rapid.Bool()).Draw(rt, "moves")
		for _, forward := range moves {
			if forward {
				r.Next()
			} else {
				r.Prev()
			}
			idx, ok := r.CurrentIndex()
			if !ok || idx < 0 || idx >= n {
				rt.Fatalf("current index %d out of [0,%d)", idx, n)
			}
		}
	})
}

func TestProperty_NextPrevRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		r := NewRegistry[*fakeHandle]()
		for i := 0; i < n; i++ {
			r.Register("tab", &fakeHandle{})
		}
		start := rapid.IntRange(0, n-1).Draw(rt, "start")
		r.Select(start)

		if rapid.Bool().Draw(rt, "nextFirst") {
			r.Next()
			r.Prev()
		} else {
			r.Prev()
			r.Next()
		}

		idx, _ := r.CurrentIndex()
		if idx != start {
			rt.Fatalf("round trip from %d ended at %d", start, idx)
		}
	})
}

func TestProperty_CloseCurrentInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		r := NewRegistry[*fakeHandle]()
		handles := make([]*fakeHandle, n)
		for i := range handles {
			handles[i] = &fakeHandle{}
			r.Register("tab", handles[i])
		}
		closes := rapid.IntRange(0, n+2).Draw(rt, "closes")
		for i := 0; i < closes; i++ {
			r.Select(rapid.IntRange(0, n).Draw(rt, "select"))
			r.CloseCurrent()

			idx, ok := r.CurrentIndex()
			if r.Len() == 0 {
				if ok {
					rt.Fatalf("empty registry has selection %d", idx)
				}
				continue
			}
			if !ok || idx >= r.Len() {
				rt.Fatalf("selection %d invalid for %d tabs", idx, r.Len())
			}
		}

		cancelled := 0
		for _, h := range handles {
			if h.cancelled > 1 {
				rt.Fatalf("handle cancelled %d times", h.cancelled)
			}
			cancelled += h.cancelled
		}
		if cancelled != n-r.Len() {
			rt.Fatalf("cancelled %d handles, removed %d tabs", cancelled, n-r.Len())
		}
	})
}
