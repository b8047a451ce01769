// Package config loads server configuration from a TOML file, falling back
// to defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Metrics MetricsConfig `toml:"metrics"`
}

type ServerConfig struct {
	Addr           string `toml:"addr"`
	RequestTimeout string `toml:"request_timeout"`
}

type StorageConfig struct {
	// Path of the SQLite database file. Empty means the default location
	// (REALMQUEST_DB or ~/.realmquest.db).
	Path string `toml:"path"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:8484",
			RequestTimeout: "30s",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns ~/.realmquest/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".realmquest", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
