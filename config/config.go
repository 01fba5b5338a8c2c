// Package config loads persisted lk settings from the user config directory.
// Settings only narrow defaults; command-line flags always win over the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the persisted settings. Zero values defer to the built-in
// defaults, so a partial config file works.
type Config struct {
	// TrashRetentionDays is how long trashed sessions survive before the
	// startup sweep removes them. 0 takes the engine default.
	TrashRetentionDays int `json:"trash_retention_days,omitempty"`
	// CacheCapacity bounds resident parsed sessions. 0 takes the cache default.
	CacheCapacity int `json:"cache_capacity,omitempty"`
	// Roots overrides the session log root per CLI identity,
	// e.g. {"claude": "/backup/claude-projects"}.
	Roots map[string]string `json:"roots,omitempty"`
}

// Root returns the configured root override for a CLI identity, or "".
func (c Config) Root(cli string) string {
	return c.Roots[cli]
}

// Path returns the config file location, ~/.config/lekha/config.json on
// Linux and the platform equivalent elsewhere.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "lekha", "config.json"), nil
}

// Load reads the config from the default path. A missing file is the common
// case and yields the zero config.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads the config from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
