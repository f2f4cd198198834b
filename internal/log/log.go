// Package log provides structured logging for biliterm.
//
// Entries are single lines of the form
//
//	2025-12-06T10:45:00 [ERROR] [room] message key=value key2=value2
//
// written to the debug log file, kept in a bounded tail for the in-app log
// overlay, and published to listeners. Logging is off until Init or
// InitWriter runs, which happens when --debug or BILITERM_DEBUG is set.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/biliterm/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Category groups related log messages.
type Category string

const (
	CatConfig  Category = "config"  // Configuration loading/saving
	CatSession Category = "session" // Session task lifecycle
	CatBus     Category = "bus"     // Event bus producers
	CatTabs    Category = "tabs"    // Tab registry changes
	CatInput   Category = "input"   // Prompt input and commits
	CatRoom    Category = "room"    // Live room connections and danmaku stream
	CatLogin   Category = "login"   // QR login flow
	CatAPI     Category = "api"     // Bilibili web API calls
	CatWatcher Category = "watcher" // File watcher events
	CatCache   Category = "cache"
	CatUI      Category = "ui"
	CatTrace   Category = "trace" // Tracing provider
)

// tailSize bounds the entries kept for the debug overlay.
const tailSize = 200

// Logger writes formatted entries and fans them out.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]

	// ring holds the last tailSize entries; next is the slot written next.
	ring [tailSize]string
	next int
	size int
}

var (
	stateMu       sync.RWMutex
	defaultLogger *Logger
)

func current() *Logger {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return defaultLogger
}

func install(w io.Writer, c io.Closer) *Logger {
	l := &Logger{
		out:      w,
		closer:   c,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](pubsub.WithBuffer(256)),
	}
	stateMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	stateMu.Unlock()
	if prev != nil {
		prev.broker.Close()
	}
	return l
}

// Init opens path for appending and makes it the log destination.
// The returned cleanup closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is the user's debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := install(f, f)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.enabled = false
		if l.closer != nil {
			_ = l.closer.Close()
			l.closer = nil
		}
	}, nil
}

// InitWriter logs to w instead of a file.
func InitWriter(w io.Writer) {
	install(w, nil)
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { emit(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { emit(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { emit(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { emit(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err appended as the last field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	errText := "<nil>"
	if err != nil {
		errText = err.Error()
	}
	emit(LevelError, cat, msg, append(fields, "error", errText))
}

func format(now time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	b.WriteString(now.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&b, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	b.WriteByte('\n')
	return b.String()
}

func emit(level Level, cat Category, msg string, fields []any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	if !l.enabled || level < l.minLevel {
		l.mu.Unlock()
		return
	}
	entry := format(time.Now(), level, cat, msg, fields)
	if l.out != nil {
		_, _ = io.WriteString(l.out, entry)
	}
	l.ring[l.next] = entry
	l.next = (l.next + 1) % tailSize
	if l.size < tailSize {
		l.size++
	}
	l.mu.Unlock()

	// Publish never blocks; slow listeners lose entries.
	l.broker.Publish(pubsub.AppendedEvent, entry)
}

// Tail returns up to n of the most recent entries, oldest first.
func Tail(n int) []string {
	l := current()
	if l == nil || n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n = min(n, l.size)
	out := make([]string, n)
	start := (l.next - n + tailSize) % tailSize
	for i := range out {
		out[i] = l.ring[(start+i)%tailSize]
	}
	return out
}

// ClearTail drops the entries kept for the debug overlay.
func ClearTail() {
	if l := current(); l != nil {
		l.mu.Lock()
		l.ring = [tailSize]string{}
		l.next, l.size = 0, 0
		l.mu.Unlock()
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to new entries until ctx is cancelled. It returns
// nil when logging was never initialized.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker)
}
