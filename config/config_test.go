package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadFileFull(t *testing.T) {
	path := writeConfig(t, `{
  "trash_retention_days": 14,
  "cache_capacity": 100,
  "roots": {
    "claude": "/backup/claude-projects",
    "codex": "/backup/codex-sessions"
  }
}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.TrashRetentionDays)
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.Equal(t, "/backup/claude-projects", cfg.Root("claude"))
	assert.Equal(t, "/backup/codex-sessions", cfg.Root("codex"))
}

func TestLoadFilePartial(t *testing.T) {
	path := writeConfig(t, `{"trash_retention_days": 7}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TrashRetentionDays)
	assert.Zero(t, cfg.CacheCapacity)
	assert.Empty(t, cfg.Root("claude"))
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeConfig(t, `{"cache_capacity": `)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestRootUnknownCLI(t *testing.T) {
	var cfg Config
	assert.Empty(t, cfg.Root("claude"))

	cfg.Roots = map[string]string{"claude": "/somewhere"}
	assert.Empty(t, cfg.Root("codex"))
}

func TestPathSuffix(t *testing.T) {
	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("lekha", "config.json"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
