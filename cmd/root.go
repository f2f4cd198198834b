package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/biliterm/internal/app"
	"github.com/zjrosen/biliterm/internal/bilibili"
	"github.com/zjrosen/biliterm/internal/config"
	"github.com/zjrosen/biliterm/internal/flags"
	"github.com/zjrosen/biliterm/internal/keys"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/paths"
	"github.com/zjrosen/biliterm/internal/tracing"
	"github.com/zjrosen/biliterm/internal/ui/styles"
)

func init() {
	// Query the terminal background before the program starts so the OSC 11
	// reply cannot race with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
var localConfigPath = filepath.Join(".biliterm", "config.yaml")

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	// cfgPath is the config file in use, or where one would be written.
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "biliterm",
	Short: "Bilibili live danmaku in the terminal",
	Long: `A terminal user interface for watching Bilibili live room danmaku.

Open rooms as tabs, send danmaku after logging in with a QR code, and
switch between rooms without leaving the terminal.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/biliterm/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false,
		"write a debug log and enable the log overlay (ctrl+x)")
	rootCmd.Flags().UintSliceP("room", "r", nil,
		"open a live room on start (repeatable)")
}

func initConfig() {
	var err error
	cfg, cfgPath, err = loadConfig(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	if debug, _ := rootCmd.PersistentFlags().GetBool("debug"); debug {
		cfg.Debug = true
	}
}

// newViper uses "::" as the key delimiter so dotted color tokens such as
// "danmaku.user" stay single keys.
func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))

	d := config.Defaults()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("liveroom::buffer_size", d.LiveRoom.BufferSize)
	v.SetDefault("liveroom::heartbeat_interval", d.LiveRoom.HeartbeatInterval)
	v.SetDefault("auth::cookie_file", d.Auth.CookieFile)
	v.SetDefault("auth::login_on_start", d.Auth.LoginOnStart)
	v.SetDefault("auth::poll_interval", d.Auth.PollInterval)
	v.SetDefault("api::timeout", d.API.Timeout)
	v.SetDefault("api::cache_ttl", d.API.CacheTTL)
	v.SetDefault("message::max_length", d.Message.MaxLength)
	v.SetDefault("message::notice_ttl", d.Message.NoticeTTL)
	v.SetDefault("ui::show_help", d.UI.ShowHelp)
	v.SetDefault("ui::show_timestamp", d.UI.ShowTimestamp)
	v.SetDefault("ui::markdown_style", d.UI.MarkdownStyle)
	for name, on := range d.Flags {
		v.SetDefault("flags::"+name, on)
	}
	v.SetDefault("tracing::enabled", d.Tracing.Enabled)
	v.SetDefault("tracing::exporter", d.Tracing.Exporter)
	v.SetDefault("tracing::otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing::sample_rate", d.Tracing.SampleRate)

	v.SetEnvPrefix("BILITERM")
	_ = v.BindEnv("debug")
	return v
}

// loadConfig reads the configuration. Lookup order:
//  1. path, when given
//  2. .biliterm/config.yaml (current directory)
//  3. ~/.config/biliterm/config.yaml (user config)
//
// When no file exists a commented default is written to the user config
// path. The returned path is the file in use, or the one that would be used.
func loadConfig(path string) (config.Config, string, error) {
	v := newViper()

	if path == "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			path = localConfigPath
		} else {
			path = filepath.Join(config.DefaultConfigDir(), "config.yaml")
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if writeErr := config.WriteDefaultConfig(path); writeErr != nil {
					log.ErrorErr(log.CatConfig, "writing default config failed", writeErr, "path", path)
				}
			}
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	var readErr error
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		readErr = fmt.Errorf("reading config %s: %w", path, err)
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Defaults(), path, fmt.Errorf("decoding config %s: %w", path, err)
	}
	c.LogFile = paths.Expand(c.LogFile)
	c.Auth.CookieFile = paths.Expand(c.Auth.CookieFile)
	c.Tracing.FilePath = paths.Expand(c.Tracing.FilePath)
	return c, path, readErr
}

func runApp(cmd *cobra.Command, args []string) error {
	rooms, _ := cmd.Flags().GetUintSlice("room")
	for _, id := range rooms {
		if !slices.Contains(cfg.Rooms, uint64(id)) {
			cfg.Rooms = append(cfg.Rooms, uint64(id))
		}
	}

	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		cleanup, err := log.Init(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer cleanup()
		log.Info(log.CatConfig, "starting", "version", version, "config", cfgPath)
	}

	if err := styles.ApplyTheme(styles.ThemeConfig{
		Preset: cfg.Theme.Preset,
		Mode:   cfg.Theme.Mode,
		Colors: cfg.Theme.FlattenedColors(),
	}); err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}

	km := keys.DefaultKeyMap()
	if err := km.Override(cfg.Keybindings); err != nil {
		return fmt.Errorf("invalid keybindings: %w", err)
	}

	provider, err := tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cookies := bilibili.NewCookieStore(cfg.Auth.CookieFile)
	if err := cookies.Load(); err != nil {
		log.ErrorErr(log.CatLogin, "loading cookies failed", err, "path", cookies.Path())
	}
	if err := cookies.Watch(ctx); err != nil {
		log.ErrorErr(log.CatWatcher, "watching cookies failed", err, "path", cookies.Path())
	}

	client := bilibili.NewClient(bilibili.Options{
		Timeout:  cfg.API.Timeout,
		CacheTTL: cfg.API.CacheTTL,
		Cookies:  cookies,
	})

	zone.NewGlobal()
	featureFlags := flags.New(cfg.Flags)

	model := app.New(client, app.Options{
		Keys:              km,
		Rooms:             cfg.Rooms,
		TickInterval:      cfg.TickInterval,
		BufferSize:        cfg.LiveRoom.BufferSize,
		HeartbeatInterval: cfg.LiveRoom.HeartbeatInterval,
		PollInterval:      cfg.Auth.PollInterval,
		MaxMessageLength:  cfg.Message.MaxLength,
		NoticeTTL:         cfg.Message.NoticeTTL,
		LoginOnStart:      cfg.Auth.LoginOnStart,
		ShowHelp:          cfg.UI.ShowHelp,
		ShowTimestamp:     cfg.UI.ShowTimestamp,
		MarkdownStyle:     cfg.UI.MarkdownStyle,
		Debug:             cfg.Debug,
		Flags:             featureFlags,
		Accounts:          cookies.Broker(),
		Account:           cookies.Account(),
	})
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if featureFlags.Enabled(flags.FlagMouse) {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, programOpts...)

	_, err = p.Run()

	// Sessions may still be running if the program stopped on an error.
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// tracingConfig maps the config section onto the provider config.
func tracingConfig(c config.TracingConfig) tracing.Config {
	tc := tracing.DefaultConfig()
	tc.Enabled = c.Enabled
	tc.FilePath = c.FilePath
	if c.Exporter != "" {
		tc.Exporter = c.Exporter
	}
	if c.OTLPEndpoint != "" {
		tc.OTLPEndpoint = c.OTLPEndpoint
	}
	tc.SampleRate = c.SampleRate
	return tc
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
