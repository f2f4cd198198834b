package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	// Session attributes
	AttrSessionID     = "session.id"
	AttrSessionName   = "session.name"
	AttrSessionEvents = "session.events"
	AttrSessionStatus = "session.status"

	// Live room attributes
	AttrRoomID   = "room.id"
	AttrRoomHost = "room.host"

	// Web API attributes
	AttrAPIEndpoint = "api.endpoint"
	AttrAPICode     = "api.code"
	AttrHTTPStatus  = "http.status_code"
)

// Span names.
const (
	SpanSessionRun  = "session.run"
	SpanRoomOpen    = "room.open"
	SpanDanmakuDial = "danmaku.dial"
	SpanAPIRequest  = "api.request"
)

// Event names for span events.
const (
	EventPanic       = "session.panic"
	EventSourceEnded = "session.source_ended"
	EventDialFailed  = "danmaku.dial_failed"
	EventAPIRetry    = "api.retry"
)

// TraceID returns the trace id of the span in ctx, or "" when ctx carries
// no sampled span. Used to correlate log lines with exported traces.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
