package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/tracing"
)

// DefaultHeartbeat is the interval the web client uses.
const DefaultHeartbeat = 30 * time.Second

const authTimeout = 10 * time.Second

// Message is one decoded frame from the danmaku stream. Body holds the JSON
// payload for OpMessage; Popularity is set for OpHeartbeatReply.
type Message struct {
	Op         uint32
	Body       []byte
	Popularity uint32
}

// DialConfig describes a danmaku connection.
type DialConfig struct {
	RoomID    uint64
	UID       uint64
	Info      DanmuInfo
	Heartbeat time.Duration
	// Dial overrides the network dialer, mainly for tests.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

type authBody struct {
	UID      uint64 `json:"uid"`
	RoomID   uint64 `json:"roomid"`
	ProtoVer int    `json:"protover"`
	Platform string `json:"platform"`
	Type     int    `json:"type"`
	Key      string `json:"key"`
}

// DanmakuConn is an authenticated danmaku stream. It reads frames on its own
// goroutine and keeps the connection alive with heartbeats until closed.
type DanmakuConn struct {
	conn   net.Conn
	roomID uint64
	msgs   chan Message
	errc   chan error
	done   chan struct{}
	once   sync.Once

	// err is the peer failure seen by Next; messages read before it are
	// still handed out.
	err error
}

// DialDanmaku connects to the first reachable host and authenticates.
func DialDanmaku(ctx context.Context, cfg DialConfig) (_ *DanmakuConn, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanDanmakuDial,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int64(tracing.AttrRoomID, int64(cfg.RoomID))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(cfg.Info.HostList) == 0 {
		return nil, errors.New("no danmaku hosts")
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = DefaultHeartbeat
	}
	dial := cfg.Dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}

	var conn net.Conn
	var lastErr error
	for _, h := range cfg.Info.HostList {
		addr := net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
		c, err := dial(ctx, "tcp", addr)
		if err != nil {
			log.Debug(log.CatRoom, "dial failed", "addr", addr, "error", err)
			span.AddEvent(tracing.EventDialFailed, trace.WithAttributes(
				attribute.String(tracing.AttrRoomHost, addr),
				attribute.String("error", err.Error())))
			lastErr = err
			continue
		}
		log.Debug(log.CatRoom, "dialed danmaku host", "addr", addr, "room", cfg.RoomID)
		span.SetAttributes(attribute.String(tracing.AttrRoomHost, addr))
		conn = c
		break
	}
	if conn == nil {
		return nil, fmt.Errorf("dialing danmaku hosts: %w", lastErr)
	}

	if err := authenticate(ctx, conn, cfg); err != nil {
		_ = conn.Close()
		return nil, err
	}

	dc := &DanmakuConn{
		conn:   conn,
		roomID: cfg.RoomID,
		msgs:   make(chan Message, 64),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go dc.readLoop()
	go dc.heartbeatLoop(cfg.Heartbeat)
	return dc, nil
}

func authenticate(ctx context.Context, conn net.Conn, cfg DialConfig) error {
	body, err := json.Marshal(authBody{
		UID:      cfg.UID,
		RoomID:   cfg.RoomID,
		ProtoVer: int(ProtoZlib),
		Platform: "web",
		Type:     2,
		Key:      cfg.Info.Token,
	})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(authTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	defer func() { _ = conn.SetDeadline(time.Time{}) }()

	pkt := Packet{Proto: ProtoHeartbeat, Op: OpAuth, Sequence: 1, Body: body}
	if _, err := conn.Write(pkt.Encode()); err != nil {
		return fmt.Errorf("sending auth: %w", err)
	}

	reply, err := ReadPacket(conn)
	if err != nil {
		return fmt.Errorf("reading auth reply: %w", err)
	}
	if reply.Op != OpAuthReply {
		return fmt.Errorf("unexpected op %d waiting for auth reply", reply.Op)
	}
	var res struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(reply.Body, &res); err != nil {
		return fmt.Errorf("decoding auth reply: %w", err)
	}
	if res.Code != 0 {
		return &APIError{Endpoint: "danmaku auth", Code: res.Code, Message: "authentication rejected"}
	}
	return nil
}

func (c *DanmakuConn) readLoop() {
	for {
		pkt, err := ReadPacket(c.conn)
		if err != nil {
			c.fail(err)
			return
		}
		packets, err := Unpack(pkt)
		if err != nil {
			log.Warn(log.CatRoom, "dropping undecodable frame", "room", c.roomID, "error", err)
			continue
		}
		for _, p := range packets {
			var msg Message
			switch p.Op {
			case OpHeartbeatReply:
				pop, ok := Popularity(p)
				if !ok {
					continue
				}
				msg = Message{Op: p.Op, Popularity: pop}
			case OpMessage:
				msg = Message{Op: p.Op, Body: p.Body}
			default:
				continue
			}
			select {
			case c.msgs <- msg:
			case <-c.done:
				return
			}
		}
	}
}

func (c *DanmakuConn) heartbeatLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	seq := uint32(2)
	for {
		pkt := Packet{Proto: ProtoHeartbeat, Op: OpHeartbeat, Sequence: seq, Body: []byte("[object Object]")}
		if _, err := c.conn.Write(pkt.Encode()); err != nil {
			c.fail(fmt.Errorf("sending heartbeat: %w", err))
			return
		}
		seq++

		select {
		case <-c.done:
			return
		case <-ticker.C:
		}
	}
}

func (c *DanmakuConn) fail(err error) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.errc <- err:
	default:
	}
}

// Next returns the next message. It returns io.EOF once the connection is
// closed locally and the read error if the server drops it, after every
// message received before the failure. Next is not safe for concurrent use.
func (c *DanmakuConn) Next(ctx context.Context) (Message, error) {
	if c.err != nil {
		return c.drain()
	}
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-c.done:
		return Message{}, io.EOF
	case msg := <-c.msgs:
		return msg, nil
	case err := <-c.errc:
		c.err = err
		return c.drain()
	}
}

// drain hands out buffered messages, then closes and reports c.err.
func (c *DanmakuConn) drain() (Message, error) {
	select {
	case msg := <-c.msgs:
		return msg, nil
	default:
		_ = c.Close()
		return Message{}, c.err
	}
}

// Close stops both loops and closes the socket. Safe to call twice.
func (c *DanmakuConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
		log.Debug(log.CatRoom, "danmaku connection closed", "room", c.roomID)
	})
	return err
}
