package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("unexpected default server: %q", cfg.ServerURL)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("unexpected default poll interval: %v", cfg.PollInterval)
	}
}

func TestRead(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
server_url = "https://notes.example.com"
auth_token = "secret"
poll_interval_ms = 5000
log_level = "debug"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerURL != "https://notes.example.com" || cfg.AuthToken != "secret" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("poll_interval_ms not applied: %v", cfg.PollInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level: %q", cfg.LogLevel)
	}
	// Untouched fields keep their defaults.
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.RequestTimeout)
	}
}

func TestRead_InvalidTOML(t *testing.T) {
	if _, err := Read(strings.NewReader(`server_url = [broken`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("unexpected server: %q", cfg.ServerURL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`server_url = "http://from-file:5000"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WISPER_SERVER_URL", "http://from-env:5000")
	t.Setenv("WISPER_POLL_INTERVAL_MS", "1500")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerURL != "http://from-env:5000" {
		t.Errorf("environment must win over the file, got %q", cfg.ServerURL)
	}
	if cfg.PollInterval != 1500*time.Millisecond {
		t.Errorf("unexpected poll interval: %v", cfg.PollInterval)
	}
}

func TestLoad_BadEnvIntIgnored(t *testing.T) {
	t.Setenv("WISPER_POLL_INTERVAL_MS", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("bad env value must keep the default, got %v", cfg.PollInterval)
	}
}
