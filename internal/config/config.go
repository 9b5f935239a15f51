// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Host           string  `toml:"host"`
	Language       string  `toml:"language"`
	UserAgent      string  `toml:"user_agent"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
	Workers        int     `toml:"workers"`
	History        bool    `toml:"history"`
	HistoryDB      string  `toml:"history_db"`
	DownloadDir    string  `toml:"download_dir"`
	Debug          bool    `toml:"debug"`
}

// maxWorkers caps the extraction pool. There are only a handful of rules.
const maxWorkers = 64

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Host:           "www.youtube.com",
		Language:       "en-US",
		UserAgent:      "",
		TimeoutSeconds: 30,
		RateLimit:      0,
		Workers:        8,
		History:        true,
		HistoryDB:      "",
		DownloadDir:    "~/Pictures/vidmeta",
		Debug:          false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vidmeta"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vidmeta"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.Contains(host, "://") || strings.ContainsAny(host, "/?# ") {
		return fmt.Errorf("host must be a bare host name, got %q", c.Host)
	}

	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if c.TimeoutSeconds <= 0 || c.TimeoutSeconds > 600 {
		return fmt.Errorf("timeout_seconds must be between 1 and 600, got %d", c.TimeoutSeconds)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %g", c.RateLimit)
	}

	if c.Workers < 1 || c.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", maxWorkers, c.Workers)
	}

	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	return expandHome(c.DownloadDir)
}

// HistoryPath returns the path to the snapshot database. An explicit
// history_db wins over the XDG data directory.
func (c *Config) HistoryPath() (string, error) {
	if c.HistoryDB != "" {
		return expandHome(c.HistoryDB)
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "vidmeta", "history.db"), nil
}

func expandHome(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Abs(p)
}
