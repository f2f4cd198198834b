package notice

import (
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestNew_Empty(t *testing.T) {
	m := New(time.Second)

	require.False(t, m.Visible())
	require.Empty(t, m.View(80))
}

func TestNew_DefaultTTL(t *testing.T) {
	m := New(0).Show("hi", LevelInfo, t0)

	require.True(t, m.Expire(t0.Add(DefaultTTL-time.Millisecond)).Visible())
	require.False(t, m.Expire(t0.Add(DefaultTTL)).Visible())
}

func TestShow_ReplacesAndRestartsDeadline(t *testing.T) {
	m := New(2*time.Second).
		Show("first", LevelInfo, t0).
		Show("second", LevelError, t0.Add(time.Second))

	require.Equal(t, "second", m.Text())
	require.Equal(t, LevelError, m.Level())
	require.True(t, m.Expire(t0.Add(2500*time.Millisecond)).Visible())
	require.False(t, m.Expire(t0.Add(3*time.Second)).Visible())
}

func TestView(t *testing.T) {
	m := New(time.Second)

	require.Equal(t, "• room 5 opened", m.Show("room 5 opened", LevelInfo, t0).View(80))
	require.Equal(t, "✕ connect failed", m.Show("connect failed", LevelError, t0).View(80))
	require.Equal(t, "✕ conn…", m.Show("connect failed", LevelError, t0).View(7))
}
