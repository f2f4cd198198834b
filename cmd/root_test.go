package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/biliterm/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// isolate points the home directory and working directory at fresh temp dirs.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home, work = t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)
	return home, work
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	home, _ := isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, `
rooms: [21452505]
auth:
  cookie_file: ~/cookies/webapi.cookie
message:
  max_length: 20
flags:
  mouse: false
theme:
  colors:
    "danmaku.user": "#123456"
`)

	cfg, used, err := loadConfig(path)

	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, []uint64{21452505}, cfg.Rooms)
	require.Equal(t, 20, cfg.Message.MaxLength)
	require.Equal(t, "#123456", cfg.Theme.FlattenedColors()["danmaku.user"])
	require.Equal(t, filepath.Join(home, "cookies", "webapi.cookie"), cfg.Auth.CookieFile)
	require.Equal(t, map[string]bool{"mouse": false, "room-events": true}, cfg.Flags)
	// Unset keys keep their defaults.
	require.Equal(t, config.Defaults().LiveRoom, cfg.LiveRoom)
	require.Equal(t, 250*time.Millisecond, cfg.TickInterval)
}

func TestLoadConfig_LocalBeforeUser(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "biliterm", "config.yaml"), "debug: false\n")
	writeFile(t, localConfigPath, "debug: true\n")

	cfg, used, err := loadConfig("")

	require.NoError(t, err)
	require.Equal(t, localConfigPath, used)
	require.True(t, cfg.Debug)
}

func TestLoadConfig_WritesDefaultWhenMissing(t *testing.T) {
	home, _ := isolate(t)
	want := filepath.Join(home, ".config", "biliterm", "config.yaml")

	cfg, used, err := loadConfig("")

	require.NoError(t, err)
	require.Equal(t, want, used)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))
	require.NoError(t, config.Validate(cfg))
}

func TestLoadConfig_MissingExplicitFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	require.Equal(t, config.Defaults().Message, cfg.Message)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "rooms: [unterminated\n")

	_, _, err := loadConfig(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "reading config")
}

func TestTracingConfig(t *testing.T) {
	tc := tracingConfig(config.TracingConfig{
		Enabled:    true,
		FilePath:   "/tmp/traces.jsonl",
		SampleRate: 0.5,
	})

	require.True(t, tc.Enabled)
	require.Equal(t, "file", tc.Exporter)
	require.Equal(t, "/tmp/traces.jsonl", tc.FilePath)
	require.Equal(t, "localhost:4317", tc.OTLPEndpoint)
	require.InDelta(t, 0.5, tc.SampleRate, 1e-9)
	require.Equal(t, "biliterm", tc.ServiceName)
}

func TestParseRoomIDs(t *testing.T) {
	ids, err := parseRoomIDs([]string{"5", "21452505"})
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 21452505}, ids)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseRoomIDs([]string{bad})
		require.Error(t, err, bad)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRoomsCommands(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, config.DefaultConfigTemplate())

	require.Contains(t, execute(t, "--config", path, "rooms", "list"), "No startup rooms")

	out := execute(t, "--config", path, "rooms", "add", "5", "7", "5")
	require.Contains(t, out, "Added room 5")
	require.Contains(t, out, "Added room 7")
	require.Contains(t, out, "Room 5 is already listed")

	require.Equal(t, "5\n7\n", execute(t, "--config", path, "rooms", "list"))

	require.Contains(t, execute(t, "--config", path, "rooms", "rm", "5"), "Removed room 5")
	rooms, err := config.LoadRooms(path)
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, rooms)

	// The rest of the template survives the edits.
	cfg, _, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, cfg.Rooms)
	require.Equal(t, config.Defaults().LiveRoom, cfg.LiveRoom)
}

func TestConfigInitCommand(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.Contains(t, execute(t, "--config", path, "config", "init"), "Wrote "+path)
	require.Contains(t, execute(t, "--config", path, "config", "init"), "Default config already at")
	require.Equal(t, path+"\n", execute(t, "--config", path, "config", "path"))

	writeFile(t, path, "debug: true\n")
	rootCmd.SetArgs([]string{"--config", path, "config", "init"})
	require.Error(t, rootCmd.Execute())
	rootCmd.SetArgs(nil)

	execute(t, "--config", path, "config", "init", "--force")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	require.Equal(t, "biliterm 1.2.3\n", execute(t, "--config", filepath.Join(t.TempDir(), "c.yaml"), "version"))
}

func TestConfigFlagsCommand(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "flags:\n  mouse: false\n")

	out := execute(t, "--config", path, "config", "flags")

	require.Contains(t, out, "mouse        off  click a tab to select it")
	require.Contains(t, out, "room-events  on   show gifts and entries in live rooms")
}
