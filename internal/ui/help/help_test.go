package help

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/biliterm/internal/keys"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestHelp_SetSize(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetSize(120, 40)

	require.Equal(t, 120, m.width)
	require.Equal(t, 40, m.height)
}

func TestHelp_View_ContainsSections(t *testing.T) {
	view := New(keys.DefaultKeyMap()).SetSize(140, 40).View()

	for _, section := range []string{"Keybindings", "Tabs", "Actions", "General", "Prompt"} {
		require.Contains(t, view, section)
	}
	require.Contains(t, view, "Press ? or Esc to close")
}

func TestHelp_View_ShowsBindings(t *testing.T) {
	view := New(keys.DefaultKeyMap()).SetSize(140, 40).View()

	require.Contains(t, view, "ctrl+l")
	require.Contains(t, view, "ctrl+w")
	require.Contains(t, view, "enter")
}

func TestHelp_View_ReflectsOverrides(t *testing.T) {
	km := keys.DefaultKeyMap()
	require.NoError(t, km.Override(map[string]string{"open_room": "ctrl+o"}))

	view := New(km).SetSize(140, 40).View()

	require.Contains(t, view, "ctrl+o")
}

func TestHelp_Overlay_KeepsBackgroundHeight(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 140)+"\n", 40), "\n")

	out := New(keys.DefaultKeyMap()).SetSize(140, 40).Overlay(bg)

	require.Len(t, strings.Split(out, "\n"), 40)
	require.Contains(t, out, "Keybindings")
	require.True(t, strings.HasPrefix(out, "....."), "top rows stay background")
}
