package login

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zjrosen/biliterm/internal/bilibili"
	"github.com/zjrosen/biliterm/internal/log"
)

// DefaultPollInterval matches the web login page.
const DefaultPollInterval = 2 * time.Second

// maxPollFailures is how many consecutive poll errors end the flow.
const maxPollFailures = 3

// Passport is the subset of the web client the login flow uses.
type Passport interface {
	GenerateQRCode(ctx context.Context) (bilibili.QRCode, error)
	PollQRCode(ctx context.Context, key string) (bilibili.PollResult, error)
}

// Source drives the QR login and yields an Event for every stage change.
// It ends with io.EOF after Success or UnexpectedCode.
type Source struct {
	passport Passport
	interval time.Duration
	key      string
	last     Stage
	done     bool
	failures int
}

// NewSource creates a login source polling every interval.
func NewSource(p Passport, interval time.Duration) *Source {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Source{passport: p, interval: interval, last: FetchingQRCode}
}

// Next implements session.Source[Event].
func (s *Source) Next(ctx context.Context) (Event, error) {
	if s.done {
		return Event{}, io.EOF
	}

	if s.key == "" {
		qr, err := s.passport.GenerateQRCode(ctx)
		if err != nil {
			return Event{}, fmt.Errorf("generating qr code: %w", err)
		}
		s.key = qr.Key
		return s.emit(Event{Stage: ScanningQRCode, URL: qr.URL}), nil
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-timer.C:
		}

		res, err := s.passport.PollQRCode(ctx, s.key)
		if err != nil {
			s.failures++
			log.Warn(log.CatLogin, "qr poll failed", "attempt", s.failures, "error", err)
			if s.failures >= maxPollFailures {
				return Event{}, fmt.Errorf("polling qr code: %w", err)
			}
			timer.Reset(s.interval)
			continue
		}
		s.failures = 0

		switch res.Code {
		case bilibili.PollNotScanned:
			// Still waiting.
		case bilibili.PollScanned:
			if s.last != QRCodeScanned {
				return s.emit(Event{Stage: QRCodeScanned}), nil
			}
		case bilibili.PollExpired:
			s.key = ""
			return s.emit(Event{Stage: QRCodeExpired}), nil
		case bilibili.PollSuccess:
			s.done = true
			return s.emit(Event{Stage: Success}), nil
		default:
			s.done = true
			log.Warn(log.CatLogin, "unexpected qr poll code", "code", res.Code, "message", res.Message)
			return s.emit(Event{Stage: UnexpectedCode, Code: res.Code, Message: res.Message}), nil
		}
		timer.Reset(s.interval)
	}
}

func (s *Source) emit(ev Event) Event {
	log.Debug(log.CatLogin, "login stage", "from", s.last, "to", ev.Stage)
	s.last = ev.Stage
	return ev
}
