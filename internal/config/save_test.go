package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRooms_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveRooms(configPath, []uint64{21452505})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rooms:")
	assert.Contains(t, string(data), "- 21452505")
}

func TestSaveRooms_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	initial := `# my settings
debug: true
theme:
  preset: nord
rooms:
  - 1
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	err := SaveRooms(configPath, []uint64{7, 8})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# my settings")
	assert.Contains(t, content, "debug: true")
	assert.Contains(t, content, "preset: nord")
	assert.NotContains(t, content, "- 1\n")

	rooms, err := LoadRooms(configPath)
	require.NoError(t, err)
	require.Equal(t, []uint64{7, 8}, rooms)
}

func TestSaveRooms_DefaultTemplate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	require.NoError(t, SaveRooms(configPath, []uint64{42}))

	cfg := loadConfigFromYAML(t, mustRead(t, configPath))
	require.Equal(t, []uint64{42}, cfg.Rooms)
	require.Equal(t, 64, cfg.LiveRoom.BufferSize)
}

func TestLoadRooms_MissingFile(t *testing.T) {
	rooms, err := LoadRooms(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Empty(t, rooms)
}

func TestLoadRooms_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("rooms: [1, 2\n"), 0o644))

	_, err := LoadRooms(configPath)
	require.ErrorContains(t, err, "parsing config")
}

func TestAddRemoveRoom(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	changed, err := AddRoom(configPath, 1)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = AddRoom(configPath, 2)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = AddRoom(configPath, 1)
	require.NoError(t, err)
	require.False(t, changed, "duplicate room should not be added")

	changed, err = RemoveRoom(configPath, 1)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = RemoveRoom(configPath, 99)
	require.NoError(t, err)
	require.False(t, changed)

	rooms, err := LoadRooms(configPath)
	require.NoError(t, err)
	require.Equal(t, []uint64{2}, rooms)
}

func TestSaveRooms_RejectsNonMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o644))

	err := SaveRooms(configPath, []uint64{1})
	require.ErrorContains(t, err, "top level is not a mapping")
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
