// Package pages is the closed set of session kinds that can live in a tab.
//
// Each variant carries its own typed handle. Cross-cutting operations are
// plain functions with one type switch each.
package pages

import (
	"fmt"

	"github.com/zjrosen/biliterm/internal/liveroom"
	"github.com/zjrosen/biliterm/internal/login"
	"github.com/zjrosen/biliterm/internal/session"
)

// Page is a tab payload. Only types in this package implement it.
type Page interface {
	Cancel()
	isPage()
}

// LiveRoom is a danmaku feed tab.
type LiveRoom struct {
	RoomID  uint64
	ShortID uint64
	Handle  *session.Handle[liveroom.State]

	memo memo
}

// Login is the QR login tab.
type Login struct {
	Handle *session.Handle[login.State]

	memo memo
}

func (*LiveRoom) isPage() {}
func (*Login) isPage()    {}

// Cancel stops the live room session.
func (p *LiveRoom) Cancel() { p.Handle.Cancel() }

// Cancel stops the login session.
func (p *Login) Cancel() { p.Handle.Cancel() }

// Label is the tab title for p.
func Label(p Page) string {
	switch p := p.(type) {
	case *LiveRoom:
		if p.ShortID != 0 && p.ShortID != p.RoomID {
			return fmt.Sprintf("Live %d", p.ShortID)
		}
		return fmt.Sprintf("Live %d", p.RoomID)
	case *Login:
		return "Login"
	default:
		return "?"
	}
}

// Status reports the lifecycle of p's session.
func Status(p Page) session.Status {
	switch p := p.(type) {
	case *LiveRoom:
		return p.Handle.Status()
	case *Login:
		return p.Handle.Status()
	default:
		return session.Finished
	}
}

// Err returns the error that ended p's session, if any.
func Err(p Page) error {
	switch p := p.(type) {
	case *LiveRoom:
		return p.Handle.Err()
	case *Login:
		return p.Handle.Err()
	default:
		return nil
	}
}

// Version returns how many snapshots p's session has published.
func Version(p Page) uint64 {
	switch p := p.(type) {
	case *LiveRoom:
		return p.Handle.Version()
	case *Login:
		return p.Handle.Version()
	default:
		return 0
	}
}

// memo holds the last rendered body of a page.
type memo struct {
	set           bool
	version       uint64
	width, height int
	lines         []string
}

// Cached returns render() for p's current snapshot at the given size. The
// previous result is reused while neither the snapshot version nor the size
// has changed. Only the UI goroutine may call it.
func Cached(p Page, width, height int, render func() []string) []string {
	var m *memo
	switch p := p.(type) {
	case *LiveRoom:
		m = &p.memo
	case *Login:
		m = &p.memo
	default:
		return render()
	}

	version := Version(p)
	if m.set && m.version == version && m.width == width && m.height == height {
		return m.lines
	}
	lines := render()
	*m = memo{set: true, version: version, width: width, height: height, lines: lines}
	return lines
}
