// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for tidechat.
//
// Configuration is TOML with built-in platform profiles (desktop, mobile),
// environment variable overrides, and validation.
//
// Configuration file location:
//   - ~/.tidechat/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tidechat configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Connection lifecycle settings
	Connection ConnectionConfig `toml:"connection"`

	// UI rendering settings
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains backend endpoint configuration.
type ServerConfig struct {
	// URL is the WebSocket endpoint of the chat backend.
	URL string `toml:"url"`
}

// ConnectionConfig contains connection and retry configuration.
type ConnectionConfig struct {
	// MaxRetries is the number of reconnect attempts after a failed open.
	MaxRetries int `toml:"max_retries"`
	// RetryDelayMS is the delay between reconnect attempts in milliseconds.
	RetryDelayMS int `toml:"retry_delay_ms"`
	// ConnectionTimeoutSecs bounds the opening handshake in seconds.
	ConnectionTimeoutSecs int `toml:"connection_timeout_secs"`
	// PingIntervalSecs is the keepalive ping cadence in seconds.
	PingIntervalSecs int `toml:"ping_interval_secs"`
	// PingTimeoutSecs is how long to wait for a pong in seconds.
	PingTimeoutSecs int `toml:"ping_timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// TextBatchMS is the chunk coalescing window in milliseconds.
	TextBatchMS int `toml:"text_batch_ms"`
	// ScrollThrottleMS is the minimum interval between scroll-to-bottom
	// operations in milliseconds.
	ScrollThrottleMS int `toml:"scroll_throttle_ms"`
	// MaxMessageHistory is the bounded history capacity.
	MaxMessageHistory int `toml:"max_message_history"`
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
}

// =============================================================================
// PLATFORM PROFILES
// =============================================================================

// Default returns the desktop profile: infrequent pings, a generous
// handshake timeout, and a small retry budget.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "ws://127.0.0.1:8765/ws",
		},
		Connection: ConnectionConfig{
			MaxRetries:            3,
			RetryDelayMS:          1000,
			ConnectionTimeoutSecs: 30,
			PingIntervalSecs:      120,
			PingTimeoutSecs:       10,
		},
		UI: UIConfig{
			TextBatchMS:       50,
			ScrollThrottleMS:  100,
			MaxMessageHistory: 100,
			Theme:             "auto",
		},
	}
}

// Mobile returns the mobile profile: aggressive pings to survive flaky
// radios, a shorter handshake timeout, and a larger retry budget with
// longer delays.
func Mobile() *Config {
	cfg := Default()
	cfg.Connection = ConnectionConfig{
		MaxRetries:            5,
		RetryDelayMS:          2000,
		ConnectionTimeoutSecs: 15,
		PingIntervalSecs:      30,
		PingTimeoutSecs:       10,
	}
	return cfg
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

// RetryDelay returns the retry delay as a duration.
func (c *ConnectionConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// ConnectionTimeout returns the handshake timeout as a duration.
func (c *ConnectionConfig) ConnectionTimeout() time.Duration {
	return time.Duration(c.ConnectionTimeoutSecs) * time.Second
}

// PingInterval returns the ping cadence as a duration.
func (c *ConnectionConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSecs) * time.Second
}

// PingTimeout returns the pong wait as a duration.
func (c *ConnectionConfig) PingTimeout() time.Duration {
	return time.Duration(c.PingTimeoutSecs) * time.Second
}

// TextBatch returns the coalescing window as a duration.
func (u *UIConfig) TextBatch() time.Duration {
	return time.Duration(u.TextBatchMS) * time.Millisecond
}

// ScrollThrottle returns the scroll throttle interval as a duration.
func (u *UIConfig) ScrollThrottle() time.Duration {
	return time.Duration(u.ScrollThrottleMS) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the tidechat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tidechat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration starting from the given profile, layering the
// config file (if present) and environment overrides on top, then
// validating the result.
func Load(profile *Config) (*Config, error) {
	cfg := profile
	if cfg == nil {
		cfg = Default()
	}

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(profile *Config, path string) (*Config, error) {
	cfg := profile
	if cfg == nil {
		cfg = Default()
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills missing or zero-value fields from the desktop profile.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Connection.RetryDelayMS == 0 {
		c.Connection.RetryDelayMS = defaults.Connection.RetryDelayMS
	}
	if c.Connection.ConnectionTimeoutSecs == 0 {
		c.Connection.ConnectionTimeoutSecs = defaults.Connection.ConnectionTimeoutSecs
	}
	if c.Connection.PingIntervalSecs == 0 {
		c.Connection.PingIntervalSecs = defaults.Connection.PingIntervalSecs
	}
	if c.Connection.PingTimeoutSecs == 0 {
		c.Connection.PingTimeoutSecs = defaults.Connection.PingTimeoutSecs
	}
	if c.UI.TextBatchMS == 0 {
		c.UI.TextBatchMS = defaults.UI.TextBatchMS
	}
	if c.UI.ScrollThrottleMS == 0 {
		c.UI.ScrollThrottleMS = defaults.UI.ScrollThrottleMS
	}
	if c.UI.MaxMessageHistory == 0 {
		c.UI.MaxMessageHistory = defaults.UI.MaxMessageHistory
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Server.URL)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("scheme must be ws or wss, got %q", u.Scheme),
		})
	}

	if c.Connection.MaxRetries < 0 {
		errs = append(errs, ValidationError{
			Field:   "connection.max_retries",
			Message: "must be non-negative",
		})
	}
	if c.Connection.RetryDelayMS < 0 {
		errs = append(errs, ValidationError{
			Field:   "connection.retry_delay_ms",
			Message: "must be non-negative",
		})
	}
	if c.Connection.ConnectionTimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "connection.connection_timeout_secs",
			Message: "must be at least 1",
		})
	}
	if c.Connection.PingIntervalSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "connection.ping_interval_secs",
			Message: "must be at least 1",
		})
	}
	if c.Connection.PingTimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "connection.ping_timeout_secs",
			Message: "must be at least 1",
		})
	}

	if c.UI.TextBatchMS < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.text_batch_ms",
			Message: "must be at least 1",
		})
	}
	if c.UI.ScrollThrottleMS < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.scroll_throttle_ms",
			Message: "must be at least 1",
		})
	}
	if c.UI.MaxMessageHistory < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.max_message_history",
			Message: "must be at least 1",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TIDECHAT_SERVER_URL: overrides server.url
//   - TIDECHAT_THEME: overrides ui.theme
//   - TIDECHAT_MAX_RETRIES: overrides connection.max_retries
//   - TIDECHAT_MAX_HISTORY: overrides ui.max_message_history
func (c *Config) ApplyEnvOverrides() {
	if serverURL := os.Getenv("TIDECHAT_SERVER_URL"); serverURL != "" {
		c.Server.URL = serverURL
	}
	if theme := os.Getenv("TIDECHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if retries := os.Getenv("TIDECHAT_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil && n >= 0 {
			c.Connection.MaxRetries = n
		}
	}
	if history := os.Getenv("TIDECHAT_MAX_HISTORY"); history != "" {
		if n, err := strconv.Atoi(history); err == nil && n > 0 {
			c.UI.MaxMessageHistory = n
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# tidechat configuration file")
	fmt.Fprintln(file, "# Generated by tidechat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
