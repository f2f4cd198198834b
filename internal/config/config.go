// Package config provides configuration types and defaults for biliterm.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/biliterm/internal/flags"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/tracing"
)

// Config holds all configuration options for biliterm.
type Config struct {
	Debug        bool          `mapstructure:"debug"`
	LogFile      string        `mapstructure:"log_file"`
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// Rooms are opened as tabs on start, in order.
	Rooms []uint64 `mapstructure:"rooms"`

	LiveRoom    LiveRoomConfig    `mapstructure:"liveroom"`
	Auth        AuthConfig        `mapstructure:"auth"`
	API         APIConfig         `mapstructure:"api"`
	Message     MessageConfig     `mapstructure:"message"`
	UI          UIConfig          `mapstructure:"ui"`
	Theme       ThemeConfig       `mapstructure:"theme"`
	Keybindings map[string]string `mapstructure:"keybindings"`
	Flags       map[string]bool   `mapstructure:"flags"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
}

// LiveRoomConfig holds live room session options.
type LiveRoomConfig struct {
	// BufferSize bounds the number of events kept per room.
	BufferSize        int           `mapstructure:"buffer_size"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// AuthConfig holds login and cookie storage options.
type AuthConfig struct {
	// CookieFile is where login cookies are persisted.
	// Default: ~/.config/biliterm/webapi.cookie
	CookieFile   string        `mapstructure:"cookie_file"`
	LoginOnStart bool          `mapstructure:"login_on_start"` // Open the login tab when not logged in
	PollInterval time.Duration `mapstructure:"poll_interval"`  // QR code status poll period
}

// APIConfig holds web API client options.
type APIConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // Room lookup cache lifetime
}

// MessageConfig holds prompt and notice options.
type MessageConfig struct {
	MaxLength int           `mapstructure:"max_length"` // Danmaku length limit in characters
	NoticeTTL time.Duration `mapstructure:"notice_ttl"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowHelp      bool   `mapstructure:"show_help"`      // Show the key help line
	ShowTimestamp bool   `mapstructure:"show_timestamp"` // Prefix events with HH:MM:SS
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	// Valid values: "default", "catppuccin-mocha", "dracula", "nord"
	Preset string `mapstructure:"preset"`

	// Mode forces light or dark mode. If empty, uses terminal detection.
	// Valid values: "light", "dark", ""
	Mode string `mapstructure:"mode"`

	// Colors allows overriding individual color tokens.
	// Supports both nested YAML structure and dot notation.
	// Example YAML:
	//   colors:
	//     danmaku:
	//       user: "#FF0000"
	// Or quoted dot notation:
	//   colors:
	//     "danmaku.user": "#FF0000"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
// This handles both nested YAML structures and already-flat keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/biliterm/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// 1.0 = all traces, 0.1 = 10% of traces
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultConfigDir returns ~/.config/biliterm, or ".biliterm" if the home
// directory is unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".biliterm"
	}
	return filepath.Join(home, ".config", "biliterm")
}

// DefaultCookieFile returns the default path for persisted login cookies.
func DefaultCookieFile() string {
	return filepath.Join(DefaultConfigDir(), "webapi.cookie")
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string {
	return filepath.Join(DefaultConfigDir(), "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Debug:        false,
		LogFile:      "debug.log",
		TickInterval: 250 * time.Millisecond,
		LiveRoom: LiveRoomConfig{
			BufferSize:        64,
			HeartbeatInterval: 30 * time.Second,
		},
		Auth: AuthConfig{
			CookieFile:   DefaultCookieFile(),
			LoginOnStart: false,
			PollInterval: 2 * time.Second,
		},
		API: APIConfig{
			Timeout:  10 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
		Message: MessageConfig{
			MaxLength: 40,
			NoticeTTL: 5 * time.Second,
		},
		UI: UIConfig{
			ShowHelp:      true,
			ShowTimestamp: true,
			MarkdownStyle: "dark",
		},
		Theme: ThemeConfig{
			Preset: "",
		},
		Flags: flags.Defaults(),
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid.
func Validate(cfg Config) error {
	positive := []struct {
		key   string
		value time.Duration
	}{
		{"tick_interval", cfg.TickInterval},
		{"liveroom.heartbeat_interval", cfg.LiveRoom.HeartbeatInterval},
		{"auth.poll_interval", cfg.Auth.PollInterval},
		{"api.timeout", cfg.API.Timeout},
		{"message.notice_ttl", cfg.Message.NoticeTTL},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", p.key, p.value)
		}
	}

	if cfg.API.CacheTTL < 0 {
		return fmt.Errorf("api.cache_ttl must not be negative, got %v", cfg.API.CacheTTL)
	}
	if cfg.LiveRoom.BufferSize <= 0 {
		return fmt.Errorf("liveroom.buffer_size must be positive, got %d", cfg.LiveRoom.BufferSize)
	}
	if cfg.Message.MaxLength <= 0 {
		return fmt.Errorf("message.max_length must be positive, got %d", cfg.Message.MaxLength)
	}
	if cfg.Auth.CookieFile == "" {
		return fmt.Errorf("auth.cookie_file is required")
	}

	for i, room := range cfg.Rooms {
		if room == 0 {
			return fmt.Errorf("rooms[%d]: room id must not be zero", i)
		}
	}

	switch cfg.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", cfg.UI.MarkdownStyle)
	}

	if err := flags.Check(cfg.Flags); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc TracingConfig) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" && !slices.Contains(tracing.ExporterNames(), tc.Exporter) {
		return fmt.Errorf("tracing.exporter must be one of %s, got %q",
			strings.Join(tracing.ExporterNames(), ", "), tc.Exporter)
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# biliterm configuration

# Write a debug log (also enabled with --debug or BILITERM_DEBUG=1)
debug: false
log_file: debug.log

# How often the UI redraws and expires notices
tick_interval: 250ms

# Live rooms opened as tabs on start (manage with "biliterm rooms add/remove")
# rooms:
#   - 21452505

liveroom:
  buffer_size: 64          # Events kept per room
  heartbeat_interval: 30s  # Danmaku server heartbeat period

auth:
  # cookie_file: ~/.config/biliterm/webapi.cookie
  login_on_start: false    # Open the QR login tab when not logged in
  poll_interval: 2s        # QR code status poll period

api:
  timeout: 10s
  cache_ttl: 10m           # Room lookup cache lifetime

message:
  max_length: 40           # Danmaku length limit in characters
  notice_ttl: 5s           # How long notices stay on the bottom line

ui:
  show_help: true
  show_timestamp: true
  # markdown_style: dark   # Home page markdown style: "dark" (default) or "light"

# Theme: start from a preset and override individual colors
# theme:
#   preset: catppuccin-mocha   # default, catppuccin-mocha, dracula, nord
#   colors:
#     danmaku.user: "#23ADE5"
#     gift: "#FF9F43"

# Rebind keys: action -> comma-separated keys
# Actions: close_tab, compose, debug, help, login, next_tab, open_room, prev_tab, quit
# keybindings:
#   open_room: "ctrl+o"
#   compose: "i, enter"

# Feature flags
# flags:
#   mouse: true         # Click a tab to select it
#   room-events: true   # Show gifts and room entries next to danmaku

# Distributed tracing of session tasks
# tracing:
#   enabled: true
#   exporter: file
#   file_path: ~/.config/biliterm/traces/traces.jsonl
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1  # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
