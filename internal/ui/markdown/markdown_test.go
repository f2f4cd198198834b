package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToDark(t *testing.T) {
	r, err := New(40, "")
	require.NoError(t, err)
	require.Equal(t, 40, r.Width())
	require.Equal(t, "dark", r.style)
}

func TestNew_UnknownStyle(t *testing.T) {
	_, err := New(40, "no-such-style")
	require.Error(t, err)
}

func TestRender_StripsTrailingNewlines(t *testing.T) {
	r, err := New(40, "light")
	require.NoError(t, err)

	out, err := r.Render("# Title\n\nsome **bold** text")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	require.Contains(t, plain, "Title")
	require.Contains(t, plain, "some bold text")
	require.NotRegexp(t, `\n$`, out)
}

func TestPage_CachesPerWidth(t *testing.T) {
	p := NewPage("hello *world*", "dark")

	first := p.View(30)
	require.Contains(t, ansi.Strip(first), "hello world")
	require.Equal(t, first, p.View(30))
	require.Equal(t, 30, p.width)

	p.View(50)
	require.Equal(t, 50, p.width)
}

func TestPage_ZeroWidth(t *testing.T) {
	require.Empty(t, NewPage("x", "dark").View(0))
}

func TestPage_BadStyleFallsBackToSource(t *testing.T) {
	p := NewPage("raw *text*", "no-such-style")

	require.Equal(t, "raw *text*", p.View(20))
}
