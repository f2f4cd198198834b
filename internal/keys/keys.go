// Package keys contains keybinding definitions.
package keys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the application in normal mode.
type KeyMap struct {
	// Tabs
	NextTab  key.Binding
	PrevTab  key.Binding
	CloseTab key.Binding

	// Actions
	OpenRoom key.Binding
	Compose  key.Binding
	Login    key.Binding

	// General
	Debug key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Tabs
		NextTab: key.NewBinding(
			key.WithKeys("pgup", "ctrl+,", "tab"),
			key.WithHelp("pgup/tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+.", "shift+tab"),
			key.WithHelp("pgdn/⇧tab", "previous tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),

		// Actions
		OpenRoom: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "open room"),
		),
		Compose: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "send danmaku"),
		),
		Login: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "qr login"),
		),

		// General
		Debug: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "debug log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OpenRoom, k.Compose, k.NextTab, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.CloseTab}, // Tabs
		{k.OpenRoom, k.Compose, k.Login},   // Actions
		{k.Debug, k.Help, k.Quit},          // General
	}
}

// bindings maps config action names to the bindings they override.
func (k *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"next_tab":  &k.NextTab,
		"prev_tab":  &k.PrevTab,
		"close_tab": &k.CloseTab,
		"open_room": &k.OpenRoom,
		"compose":   &k.Compose,
		"login":     &k.Login,
		"debug":     &k.Debug,
		"help":      &k.Help,
		"quit":      &k.Quit,
	}
}

// Actions returns the action names accepted by Override, sorted.
func Actions() []string {
	km := DefaultKeyMap()
	names := make([]string, 0, len(km.bindings()))
	for name := range km.bindings() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Override rebinds actions from a config map of action name to a
// comma-separated key list, e.g. {"open_room": "ctrl+o, o"}.
// The help description is kept; the help key shows the new keys.
func (k *KeyMap) Override(overrides map[string]string) error {
	targets := k.bindings()
	for action, spec := range overrides {
		b, ok := targets[action]
		if !ok {
			return fmt.Errorf("unknown key action %q (valid: %s)", action, strings.Join(Actions(), ", "))
		}
		var list []string
		for _, part := range strings.Split(spec, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		if len(list) == 0 {
			return fmt.Errorf("key action %q: no keys given", action)
		}
		b.SetKeys(list...)
		b.SetHelp(strings.Join(list, "/"), b.Help().Desc)
	}
	return nil
}

// PromptKeyMap defines the keybindings shown while editing the prompt.
type PromptKeyMap struct {
	Submit    key.Binding
	Cancel    key.Binding
	Backspace key.Binding
}

// DefaultPromptKeyMap returns the keybindings for prompt editing.
func DefaultPromptKeyMap() PromptKeyMap {
	return PromptKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "delete"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k PromptKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.Backspace}
}

// FullHelp returns keybindings for the full help view.
func (k PromptKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
