// Package flags toggles optional UI behavior from the `flags` config section.
package flags

import (
	"fmt"
	"maps"
	"slices"

	"github.com/zjrosen/biliterm/internal/log"
)

const (
	// FlagMouse makes a click on a tab select it.
	FlagMouse = "mouse"

	// FlagRoomEvents shows gift and entry events in the live feed next to
	// danmaku.
	FlagRoomEvents = "room-events"
)

// Flag describes one known flag.
type Flag struct {
	Name    string
	Help    string
	Default bool
}

var known = []Flag{
	{Name: FlagMouse, Help: "click a tab to select it", Default: true},
	{Name: FlagRoomEvents, Help: "show gifts and entries in live rooms", Default: true},
}

// Known lists every flag in a stable order.
func Known() []Flag { return slices.Clone(known) }

// Defaults returns the value of every known flag when the config sets none.
func Defaults() map[string]bool {
	out := make(map[string]bool, len(known))
	for _, f := range known {
		out[f.Name] = f.Default
	}
	return out
}

// Check reports the first name in values that is not a known flag.
func Check(values map[string]bool) error {
	names := slices.Sorted(maps.Keys(values))
	for _, name := range names {
		if !isKnown(name) {
			return fmt.Errorf("unknown flag %q", name)
		}
	}
	return nil
}

func isKnown(name string) bool {
	return slices.ContainsFunc(known, func(f Flag) bool { return f.Name == name })
}

// Registry is the resolved, read-only flag set.
type Registry struct {
	values map[string]bool
}

// New overlays values on the defaults. Unknown names are logged and
// dropped.
func New(values map[string]bool) *Registry {
	r := &Registry{values: Defaults()}
	for name, on := range values {
		if !isKnown(name) {
			log.Warn(log.CatConfig, "ignoring unknown flag", "flag", name)
			continue
		}
		r.values[name] = on
	}
	log.Debug(log.CatConfig, "feature flags", "flags", r.values)
	return r
}

// Enabled reports whether name is on. A nil registry or an unknown name is
// off.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.values[name]
}

// All returns a copy of the resolved flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.values)
}
