// Package login runs the QR code login flow as a session.
package login

import (
	"fmt"
	"time"
)

// Stage is a step of the QR login flow.
type Stage int

const (
	FetchingQRCode Stage = iota
	ScanningQRCode
	QRCodeExpired
	QRCodeScanned
	UnexpectedCode
	Success
)

func (s Stage) String() string {
	switch s {
	case FetchingQRCode:
		return "fetching"
	case ScanningQRCode:
		return "scanning"
	case QRCodeExpired:
		return "expired"
	case QRCodeScanned:
		return "scanned"
	case UnexpectedCode:
		return "unexpected"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Terminal reports whether the flow is over.
func (s Stage) Terminal() bool {
	return s == Success || s == UnexpectedCode
}

// Event moves the flow to a new stage. URL is set with ScanningQRCode and
// Code with UnexpectedCode.
type Event struct {
	Stage   Stage
	URL     string
	Code    int
	Message string
}

// State is the snapshot published for the login tab.
type State struct {
	Stage     Stage
	QRCodeURL string
	Code      int
	Message   string
	Generated int
	UpdatedAt time.Time
}

// NewState returns the initial snapshot.
func NewState() State {
	return State{Stage: FetchingQRCode}
}

// Reduce applies ev. The code URL survives an expiry so the old code can
// stay on screen until a new one arrives.
func Reduce(prev State, ev Event) (State, bool) {
	if ev.Stage == prev.Stage && ev.URL == prev.QRCodeURL && ev.Code == prev.Code {
		return prev, false
	}
	next := State{
		Stage:     ev.Stage,
		Code:      ev.Code,
		Message:   ev.Message,
		Generated: prev.Generated,
		UpdatedAt: time.Now(),
	}
	switch ev.Stage {
	case ScanningQRCode:
		next.QRCodeURL = ev.URL
		next.Generated++
	case QRCodeExpired:
		next.QRCodeURL = prev.QRCodeURL
	}
	return next, true
}

// Hint is the one-line status shown above the code.
func (s State) Hint() string {
	switch s.Stage {
	case FetchingQRCode:
		return "Requesting QR code..."
	case ScanningQRCode:
		return "Scan the QR code with the Bilibili app"
	case QRCodeExpired:
		return "QR code expired, requesting a new one"
	case QRCodeScanned:
		return "Scanned, confirm the login on your phone"
	case UnexpectedCode:
		if s.Message != "" {
			return fmt.Sprintf("Unexpected status code %d: %s", s.Code, s.Message)
		}
		return fmt.Sprintf("Unexpected status code %d", s.Code)
	case Success:
		return "Logged in"
	default:
		return ""
	}
}
