// Package watcher reports settled changes to a single file.
// biliterm uses it to pick up credential files rewritten or removed by
// another instance.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/biliterm/internal/log"
)

// DefaultDebounce is how long the file must stay quiet before a change is
// reported.
const DefaultDebounce = 500 * time.Millisecond

// Change describes the file after a burst of events settled.
type Change struct {
	Path    string
	Removed bool
}

type options struct {
	debounce time.Duration
}

// Option configures Watch.
type Option func(*options)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watch reports changes to path until ctx is done, then closes the
// returned channel. The file's directory must exist; the file itself may
// appear later. Only the latest unread change is kept.
func Watch(ctx context.Context, path string, opts ...Option) (<-chan Change, error) {
	o := options{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	// Atomic writers replace the file, so watch the directory.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	out := make(chan Change, 1)
	go run(ctx, fsw, path, o.debounce, out)
	log.Debug(log.CatWatcher, "watching file", "path", path)
	return out, nil
}

func run(ctx context.Context, fsw *fsnotify.Watcher, path string, debounce time.Duration, out chan Change) {
	defer close(out)
	defer func() { _ = fsw.Close() }()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	name := filepath.Base(path)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			_, err := os.Stat(path)
			change := Change{Path: path, Removed: errors.Is(err, fs.ErrNotExist)}
			log.Debug(log.CatWatcher, "file changed", "path", path, "removed", change.Removed)
			// Replace an unread change with the newer one.
			select {
			case <-out:
			default:
			}
			out <- change

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "fsnotify error", "path", path, "error", err)
		}
	}
}
