// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates lumina-tui configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the full application configuration, loaded from
// ~/.lumina/config.toml with environment overrides on top.
type Config struct {
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig configures the Gemini backend connection.
type APIConfig struct {
	// Key is the API key. Usually supplied via LUMINA_API_KEY or
	// GEMINI_API_KEY rather than written into the file.
	Key string `toml:"key"`
	// Model is the model name, e.g. "gemini-2.5-flash".
	Model string `toml:"model"`
	// BaseURL overrides the API endpoint. Empty means the public endpoint.
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds bounds a whole streaming call.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RequestsPerMinute enables client-side throttling when positive.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// UIConfig configures terminal rendering.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
	// ShowTimestamps renders message timestamps in the transcript.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// StorageConfig configures the on-disk session archive.
type StorageConfig struct {
	// Enabled turns session persistence on. Off by default: chats are
	// in-memory only unless the user opts in.
	Enabled bool `toml:"enabled"`
	// Dir is the archive directory. Empty means ~/.lumina/sessions.
	Dir string `toml:"dir"`
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

const (
	// DefaultModel mirrors the backend client default.
	DefaultModel = "gemini-2.5-flash"

	defaultTimeoutSeconds = 120
	defaultTheme          = "dark"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			Model:          DefaultModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		UI: UIConfig{
			Theme: defaultTheme,
		},
	}
}

// Dir returns the application config directory (~/.lumina), creating
// nothing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".lumina"), nil
}

// DefaultPath returns the config file path (~/.lumina/config.toml).
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path, layering it over the defaults and
// applying environment overrides. A missing file is not an error: the
// defaults plus environment are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnvOverrides layers environment variables over the file values.
// LUMINA_API_KEY wins over GEMINI_API_KEY when both are set.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("LUMINA_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("LUMINA_MODEL"); v != "" {
		c.API.Model = v
	}
	if v := os.Getenv("LUMINA_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
}

// Validate checks the config for values that cannot work. It does not
// require an API key: the UI reports that at send time with a clearer
// message than a startup failure would give.
func (c *Config) Validate() error {
	if c.API.Model == "" {
		return errors.New("config: api.model must not be empty")
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("config: api.timeout_seconds must not be negative, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RequestsPerMinute < 0 {
		return fmt.Errorf("config: api.requests_per_minute must not be negative, got %d", c.API.RequestsPerMinute)
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("config: ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	return nil
}

// SessionsDir resolves the archive directory, defaulting under the config
// dir.
func (c *Config) SessionsDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}
