package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stonegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  net_endpoint: \"127.0.0.1:25566\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:25566", cfg.Server.NetEndpoint)
	require.Equal(t, "A Stonegate Server", cfg.Server.Motd)
	require.Equal(t, int32(20), cfg.Server.Slots)
	require.Equal(t, Survival, cfg.Server.GameMode)
	require.Equal(t, int32(7), cfg.Server.ViewDistance)
	require.Equal(t, 200, cfg.Limits.MaxPacketsPerSecond)
}

func TestLoadParsesGameMode(t *testing.T) {
	path := writeConfig(t, "server:\n  game_mode: creative\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Creative, cfg.Server.GameMode)
}

func TestLoadRejectsUnknownGameMode(t *testing.T) {
	path := writeConfig(t, "server:\n  game_mode: godmode\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stonegate.yaml")

	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "A Stonegate Server", cfg.Server.Motd)
	require.Equal(t, int32(20), cfg.Server.Slots)
	require.Equal(t, Survival, cfg.Server.GameMode)
}
