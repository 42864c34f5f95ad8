// Package config loads client configuration from a TOML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all client configuration.
type Config struct {
	ServerURL      string        `toml:"server_url"`
	AuthToken      string        `toml:"auth_token"`
	PollInterval   time.Duration `toml:"-"`
	PollIntervalMS int64         `toml:"poll_interval_ms"`
	RequestTimeout time.Duration `toml:"-"`
	TimeoutMS      int64         `toml:"request_timeout_ms"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// MetricsAddr exposes Prometheus metrics when non-empty.
	MetricsAddr string `toml:"metrics_addr"`
}

// Default returns the built-in defaults: a local server and the fixed
// 3-second polling cadence.
func Default() *Config {
	return &Config{
		ServerURL:      "http://localhost:5000",
		PollInterval:   3 * time.Second,
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wisper.toml"
	}
	return filepath.Join(home, ".config", "wisper", "config.toml")
}

// Read decodes a Config from the provided reader on top of defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Load reads the config file at path (missing file = defaults) and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		cfg, err = Read(f)
		if err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// Defaults plus environment is a valid configuration.
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg.applyEnv()
	cfg.normalize()

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server_url is required")
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.PollIntervalMS > 0 {
		c.PollInterval = time.Duration(c.PollIntervalMS) * time.Millisecond
	}
	if c.TimeoutMS > 0 {
		c.RequestTimeout = time.Duration(c.TimeoutMS) * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

func (c *Config) applyEnv() {
	c.ServerURL = envOr("WISPER_SERVER_URL", c.ServerURL)
	c.AuthToken = envOr("WISPER_AUTH_TOKEN", c.AuthToken)
	c.LogLevel = envOr("WISPER_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("WISPER_LOG_FORMAT", c.LogFormat)
	c.MetricsAddr = envOr("WISPER_METRICS_ADDR", c.MetricsAddr)
	c.PollIntervalMS = envInt64("WISPER_POLL_INTERVAL_MS", c.PollIntervalMS)
	c.TimeoutMS = envInt64("WISPER_REQUEST_TIMEOUT_MS", c.TimeoutMS)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
