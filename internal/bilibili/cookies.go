package bilibili

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/pubsub"
	"github.com/zjrosen/biliterm/internal/watcher"
)

// Cookie names the web API relies on.
const (
	CookieSession = "SESSDATA"
	CookieCSRF    = "bili_jct"
	CookieUserID  = "DedeUserID"
)

// Account summarises the credentials held by a CookieStore.
type Account struct {
	UID      string
	LoggedIn bool
}

type cookieFile struct {
	Cookies map[string]string `yaml:"cookies"`
}

// CookieStore keeps web cookies in memory and persists them as YAML.
// Changes are published on its broker.
type CookieStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
	broker *pubsub.Broker[Account]
}

// NewCookieStore creates a store backed by path. An empty path keeps the
// cookies in memory only.
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{
		path:   path,
		values: make(map[string]string),
		broker: pubsub.NewBroker[Account](pubsub.WithReplay()),
	}
}

// Path returns the backing file path.
func (s *CookieStore) Path() string { return s.path }

// Broker publishes the account after every load or update.
func (s *CookieStore) Broker() *pubsub.Broker[Account] { return s.broker }

// Load replaces the in-memory cookies with the file contents. A missing file
// leaves the store empty.
func (s *CookieStore) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cookie file: %w", err)
	}

	var f cookieFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing cookie file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.values = make(map[string]string, len(f.Cookies))
	for k, v := range f.Cookies {
		s.values[k] = v
	}
	s.mu.Unlock()

	account := s.Account()
	log.Info(log.CatLogin, "cookies loaded", "path", s.path, "logged_in", account.LoggedIn)
	s.broker.Publish(pubsub.ChangedEvent, account)
	return nil
}

// Save writes the cookies to the backing file with owner-only permissions.
func (s *CookieStore) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	f := cookieFile{Cookies: make(map[string]string, len(s.values))}
	for k, v := range s.values {
		f.Cookies[k] = v
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating cookie dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing cookie file: %w", err)
	}
	return nil
}

// Set merges cookies into the store.
func (s *CookieStore) Set(cookies map[string]string) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	for k, v := range cookies {
		s.values[k] = v
	}
	s.mu.Unlock()
	s.broker.Publish(pubsub.ChangedEvent, s.Account())
}

// Get returns a single cookie value.
func (s *CookieStore) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Header renders the cookies as a Cookie request header value.
func (s *CookieStore) Header() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+s.values[k])
	}
	return strings.Join(parts, "; ")
}

// Account reports who the cookies belong to.
func (s *CookieStore) Account() Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Account{
		UID:      s.values[CookieUserID],
		LoggedIn: s.values[CookieSession] != "" && s.values[CookieCSRF] != "",
	}
}

// Watch reloads the store whenever the backing file changes, until ctx is
// done.
func (s *CookieStore) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating cookie dir: %w", err)
	}

	changes, err := watcher.Watch(ctx, s.path)
	if err != nil {
		return err
	}

	go func() {
		for change := range changes {
			if change.Removed {
				s.clear()
				continue
			}
			if err := s.Load(); err != nil {
				log.ErrorErr(log.CatLogin, "reloading cookies", err)
			}
		}
	}()
	return nil
}

// clear forgets every cookie, e.g. after the file was deleted to log out.
func (s *CookieStore) clear() {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.mu.Unlock()
	log.Info(log.CatLogin, "cookie file removed, logged out", "path", s.path)
	s.broker.Publish(pubsub.ChangedEvent, s.Account())
}
