package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != "127.0.0.1:8484" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:8484")
	}
	if cfg.Server.RequestTimeout != "30s" {
		t.Errorf("Server.RequestTimeout = %q, want %q", cfg.Server.RequestTimeout, "30s")
	}
	if cfg.Storage.Path != "" {
		t.Errorf("Storage.Path = %q, want empty (resolved elsewhere)", cfg.Storage.Path)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true by default")
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
addr = "0.0.0.0:9000"

[storage]
path = "/tmp/rq.db"

[metrics]
enabled = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q, want override", cfg.Server.Addr)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.RequestTimeout != "30s" {
		t.Errorf("Server.RequestTimeout = %q, want default", cfg.Server.RequestTimeout)
	}
	if cfg.Storage.Path != "/tmp/rq.db" {
		t.Errorf("Storage.Path = %q, want override", cfg.Storage.Path)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be overridden to false")
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddr="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on malformed TOML")
	}
}
