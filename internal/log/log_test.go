package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	Info(CatRoom, "connected", "room", 42, "host", "example")

	line := buf.String()
	require.Contains(t, line, "[INFO] [room] connected room=42 host=example")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	Warn(CatTabs, "dangling", "key")

	require.Contains(t, buf.String(), "dangling key=<missing>")
}

func TestErrorErr_AppendsError(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	ErrorErr(CatAPI, "request failed", errors.New("timeout"), "path", "/x")
	ErrorErr(CatAPI, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [api] request failed path=/x error=timeout")
	require.Contains(t, out, "nil error error=<nil>")
}

func TestSetMinLevel_FiltersBelow(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	SetMinLevel(LevelWarn)

	Debug(CatUI, "hidden")
	Info(CatUI, "hidden too")
	Error(CatUI, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestSetEnabled_False(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	SetEnabled(false)

	Error(CatUI, "nothing")
	require.Empty(t, buf.String())
}

func TestTail_KeepsMostRecent(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	for i := 0; i < tailSize+10; i++ {
		Debug(CatBus, "tick")
	}
	Info(CatBus, "last")

	require.Len(t, Tail(tailSize*2), tailSize)
	last := Tail(1)
	require.Len(t, last, 1)
	require.Contains(t, last[0], "last")
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatSession, "hello")

	msgCh := make(chan any, 1)
	go func() { msgCh <- listener.Listen()() }()

	select {
	case msg := <-msgCh:
		event, ok := msg.(LogEvent)
		require.True(t, ok)
		require.Contains(t, event.Payload, "hello")
	case <-time.After(time.Second):
		t.Fatal("no log event received")
	}
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "UNKNOWN", Level(9).String())
	require.Equal(t, "UNKNOWN", Level(-1).String())
}

func TestTail_WrapsInOrder(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	for i := range tailSize + 3 {
		Info(CatBus, "n", "i", i)
	}

	tail := Tail(3)
	require.Len(t, tail, 3)
	require.Contains(t, tail[0], "i=200")
	require.Contains(t, tail[2], "i=202")

	ClearTail()
	require.Empty(t, Tail(5))
	Info(CatBus, "fresh")
	require.Len(t, Tail(5), 1)
}

func TestInit_WritesFileAndCleanupStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatConfig, "starting", "version", "dev")
	cleanup()
	Info(CatConfig, "after cleanup")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [config] starting version=dev")
	require.NotContains(t, string(data), "after cleanup")
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "dir", "debug.log"))
	require.Error(t, err)
}
