// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Auth    AuthConfig    `koanf:"auth"`
	Catalog CatalogConfig `koanf:"catalog"`
	Watch   WatchConfig   `koanf:"watch"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - LUDARIUM_SERVER_PORT (alias: PORT)
//   - LUDARIUM_SERVER_HOST
//   - LUDARIUM_SERVER_FRONTEND_URL (alias: FRONTEND_URL)
//   - LUDARIUM_SERVER_CORS_ORIGINS (comma-separated)
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	FrontendURL     string        `koanf:"frontend_url"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// StorageConfig locates the metadata root where all library state lives.
//
// Environment variables:
//   - LUDARIUM_STORAGE_ROOT (alias: METADATA_ROOT)
type StorageConfig struct {
	Root string `koanf:"root"`
}

// AuthConfig holds the optional bearer token gate for mutating endpoints.
// An empty token disables authentication.
type AuthConfig struct {
	Token string `koanf:"token"`
}

// CatalogConfig holds upstream game catalog credentials. Both fields empty
// means catalog lookups are disabled and the library runs standalone.
type CatalogConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Timeout      time.Duration `koanf:"timeout"`
}

// WatchConfig controls the optional filesystem watcher that reloads the
// library when metadata files change outside the API.
type WatchConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8077,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			FrontendURL:     "",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Root: "/data/library",
		},
		Auth: AuthConfig{
			Token: "",
		},
		Catalog: CatalogConfig{
			ClientID:     "",
			ClientSecret: "",
			Timeout:      15 * time.Second,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for malformed or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Storage.Root == "" {
		return fmt.Errorf("storage root must not be empty")
	}
	if c.Server.FrontendURL != "" {
		u, err := url.Parse(c.Server.FrontendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("frontend url %q is not a valid http(s) URL", c.Server.FrontendURL)
		}
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("rate limit request count must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
