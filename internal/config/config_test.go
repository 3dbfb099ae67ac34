package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.TickRate != 60 || cfg.MaxPlayers != 4 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.StartDelay != 2*time.Second {
		t.Fatalf("start_delay = %s, want 2s", cfg.StartDelay)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "port: 9000\ntick_rate: 30\n")
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 || cfg.TickRate != 30 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MaxPlayers != 4 {
		t.Fatalf("unset key lost its default: %+v", cfg)
	}
}

// A malformed value must surface as an error with a nil config, never
// as a half-parsed struct the caller could deref.
func TestLoadMalformedValue(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "port: not-a-number\n")
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
	if cfg != nil {
		t.Fatalf("expected nil config on parse failure, got %+v", cfg)
	}
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
