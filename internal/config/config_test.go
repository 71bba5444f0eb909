package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rollsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8123", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
data_dir: /var/lib/rollsync
refresh_interval: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/var/lib/rollsync", cfg.DataDir)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "addr: \":9001\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, "./rollsync-data", cfg.DataDir)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, "refresh_interval: -1s\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "refresh_interval must be positive")

	path = writeConfig(t, "addr: \"\"\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "addr must not be empty")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path = writeConfig(t, "addr: [not, a, string\n")
	_, err = Load(path)
	assert.Error(t, err)
}
