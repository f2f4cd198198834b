package login

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/biliterm/internal/bilibili"
	"github.com/zjrosen/biliterm/internal/session"
)

// scriptedPassport replays poll codes; an entry of -1 returns an error.
type scriptedPassport struct {
	mu        sync.Mutex
	codes     []int
	generated int
	genErr    error
}

func (p *scriptedPassport) GenerateQRCode(ctx context.Context) (bilibili.QRCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.genErr != nil {
		return bilibili.QRCode{}, p.genErr
	}
	p.generated++
	key := "k" + strings.Repeat("x", p.generated)
	return bilibili.QRCode{URL: "https://example.test/qr?key=" + key, Key: key}, nil
}

func (p *scriptedPassport) PollQRCode(ctx context.Context, key string) (bilibili.PollResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.codes) == 0 {
		return bilibili.PollResult{Code: bilibili.PollNotScanned}, nil
	}
	code := p.codes[0]
	p.codes = p.codes[1:]
	if code == -1 {
		return bilibili.PollResult{}, errors.New("network down")
	}
	return bilibili.PollResult{Code: code, Message: "msg"}, nil
}

func collect(t *testing.T, src *Source) []Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var out []Event
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func stages(events []Event) []Stage {
	out := make([]Stage, len(events))
	for i, ev := range events {
		out[i] = ev.Stage
	}
	return out
}

func TestSource_HappyPath(t *testing.T) {
	p := &scriptedPassport{codes: []int{
		bilibili.PollNotScanned,
		bilibili.PollScanned,
		bilibili.PollScanned,
		bilibili.PollSuccess,
	}}
	events := collect(t, NewSource(p, time.Millisecond))

	require.Equal(t, []Stage{ScanningQRCode, QRCodeScanned, Success}, stages(events))
	require.Contains(t, events[0].URL, "key=kx")
}

func TestSource_ExpiredRegenerates(t *testing.T) {
	p := &scriptedPassport{codes: []int{bilibili.PollExpired, bilibili.PollSuccess}}
	events := collect(t, NewSource(p, time.Millisecond))

	require.Equal(t, []Stage{ScanningQRCode, QRCodeExpired, ScanningQRCode, Success}, stages(events))
	require.NotEqual(t, events[0].URL, events[2].URL)
	require.Equal(t, 2, p.generated)
}

func TestSource_UnexpectedCodeEnds(t *testing.T) {
	p := &scriptedPassport{codes: []int{86000}}
	events := collect(t, NewSource(p, time.Millisecond))

	require.Equal(t, []Stage{ScanningQRCode, UnexpectedCode}, stages(events))
	require.Equal(t, 86000, events[1].Code)
}

func TestSource_TransientPollErrors(t *testing.T) {
	p := &scriptedPassport{codes: []int{-1, -1, bilibili.PollSuccess}}
	events := collect(t, NewSource(p, time.Millisecond))
	require.Equal(t, []Stage{ScanningQRCode, Success}, stages(events))
}

func TestSource_PersistentPollErrors(t *testing.T) {
	p := &scriptedPassport{codes: []int{-1, -1, -1}}
	src := NewSource(p, time.Millisecond)

	_, err := src.Next(context.Background())
	require.NoError(t, err)
	_, err = src.Next(context.Background())
	require.ErrorContains(t, err, "network down")
}

func TestSource_GenerateError(t *testing.T) {
	src := NewSource(&scriptedPassport{genErr: errors.New("503")}, time.Millisecond)
	_, err := src.Next(context.Background())
	require.ErrorContains(t, err, "generating qr code")
}

func TestSource_CancelWhileWaiting(t *testing.T) {
	src := NewSource(&scriptedPassport{}, time.Hour)
	_, err := src.Next(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReduce(t *testing.T) {
	s := NewState()
	require.Equal(t, FetchingQRCode, s.Stage)

	s, changed := Reduce(s, Event{Stage: ScanningQRCode, URL: "u1"})
	require.True(t, changed)
	require.Equal(t, "u1", s.QRCodeURL)
	require.Equal(t, 1, s.Generated)

	_, changed = Reduce(s, Event{Stage: ScanningQRCode, URL: "u1"})
	require.False(t, changed)

	s, _ = Reduce(s, Event{Stage: QRCodeExpired})
	require.Equal(t, "u1", s.QRCodeURL, "expired code stays visible")

	s, _ = Reduce(s, Event{Stage: ScanningQRCode, URL: "u2"})
	require.Equal(t, 2, s.Generated)

	s, _ = Reduce(s, Event{Stage: QRCodeScanned})
	require.Empty(t, s.QRCodeURL)
	require.Equal(t, "Scanned, confirm the login on your phone", s.Hint())

	s, _ = Reduce(s, Event{Stage: UnexpectedCode, Code: 1, Message: "bad"})
	require.Equal(t, "Unexpected status code 1: bad", s.Hint())
	require.True(t, s.Stage.Terminal())
}

func TestLoginSession_EndToEnd(t *testing.T) {
	p := &scriptedPassport{codes: []int{bilibili.PollScanned, bilibili.PollSuccess}}
	src := NewSource(p, time.Millisecond)
	h := session.NewTask("login", session.Source[Event](src), NewState(), Reduce).Run(context.Background())

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("login session did not finish")
	}
	require.Equal(t, session.Finished, h.Status())
	require.NoError(t, h.Err())
	require.Equal(t, Success, h.Peek().Stage)
	require.Equal(t, "Logged in", h.Peek().Hint())
}

func TestRenderQRCode(t *testing.T) {
	require.Empty(t, RenderQRCode(""))

	out := RenderQRCode("https://example.test/qr?key=abc")
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 10)
	require.True(t, strings.ContainsAny(out, "▀▄█"))
}

func TestStage_String(t *testing.T) {
	require.Equal(t, "fetching", FetchingQRCode.String())
	require.Equal(t, "success", Success.String())
	require.Equal(t, "unknown", Stage(42).String())
}
