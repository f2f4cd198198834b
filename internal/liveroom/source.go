package liveroom

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/biliterm/internal/bilibili"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/session"
	"github.com/zjrosen/biliterm/internal/tracing"
)

const tracerName = "github.com/zjrosen/biliterm/internal/liveroom"

// Stream is the raw frame stream a Source reads from.
type Stream interface {
	Next(ctx context.Context) (bilibili.Message, error)
	Close() error
}

// API is the subset of the web client needed to open a room.
type API interface {
	RoomInit(ctx context.Context, id uint64) (bilibili.RoomInfo, error)
	DanmuInfo(ctx context.Context, roomID uint64) (bilibili.DanmuInfo, error)
}

// Source yields feed events from a danmaku stream. It implements
// session.Source[Event] and io.Closer.
type Source struct {
	stream Stream
	roomID uint64
	room   bilibili.RoomInfo
	now    func() time.Time
}

// NewSource wraps an established stream.
func NewSource(stream Stream, roomID uint64) *Source {
	return &Source{stream: stream, roomID: roomID, room: bilibili.RoomInfo{RoomID: roomID}, now: time.Now}
}

// RoomID returns the resolved (long) room id.
func (s *Source) RoomID() uint64 { return s.roomID }

// Room returns the room lookup the source was opened with.
func (s *Source) Room() bilibili.RoomInfo { return s.room }

// Next skips frames that carry nothing to show and malformed commands.
func (s *Source) Next(ctx context.Context) (Event, error) {
	for {
		msg, err := s.stream.Next(ctx)
		if err != nil {
			return Event{}, err
		}
		ev, ok, err := Decode(msg, s.now())
		if err != nil {
			log.Debug(log.CatRoom, "skipping malformed command", "room", s.roomID, "error", err)
			continue
		}
		if ok {
			return ev, nil
		}
	}
}

// Close closes the underlying stream.
func (s *Source) Close() error {
	return s.stream.Close()
}

// Options tunes Open.
type Options struct {
	UID       uint64
	Heartbeat time.Duration
	// Dial replaces bilibili.DialDanmaku, mainly for tests.
	Dial func(ctx context.Context, cfg bilibili.DialConfig) (Stream, error)
}

// Open resolves roomID, fetches danmaku credentials and connects. Every
// failure is reported as a *session.ConnectError.
func Open(ctx context.Context, api API, roomID uint64, opts Options) (_ *Source, err error) {
	target := "room " + strconv.FormatUint(roomID, 10)

	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanRoomOpen,
		trace.WithAttributes(attribute.Int64(tracing.AttrRoomID, int64(roomID))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "connect failed")
		}
		span.End()
	}()

	room, err := api.RoomInit(ctx, roomID)
	if err != nil {
		return nil, &session.ConnectError{Target: target, Err: fmt.Errorf("resolving room: %w", err)}
	}
	info, err := api.DanmuInfo(ctx, room.RoomID)
	if err != nil {
		return nil, &session.ConnectError{Target: target, Err: fmt.Errorf("fetching danmaku info: %w", err)}
	}

	dial := opts.Dial
	if dial == nil {
		dial = func(ctx context.Context, cfg bilibili.DialConfig) (Stream, error) {
			return bilibili.DialDanmaku(ctx, cfg)
		}
	}
	stream, err := dial(ctx, bilibili.DialConfig{
		RoomID:    room.RoomID,
		UID:       opts.UID,
		Info:      info,
		Heartbeat: opts.Heartbeat,
	})
	if err != nil {
		// A rejected token will not get better from the cache.
		if inv, ok := api.(interface {
			InvalidateDanmuInfo(ctx context.Context, roomID uint64)
		}); ok {
			inv.InvalidateDanmuInfo(ctx, room.RoomID)
		}
		return nil, &session.ConnectError{Target: target, Err: err}
	}

	log.Info(log.CatRoom, "live room connected", "room", room.RoomID, "short_id", room.ShortID, "live", room.Live())
	src := NewSource(stream, room.RoomID)
	src.room = room
	return src, nil
}
