// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/jeranaias/kbochat-tui/internal/logging"
	"github.com/jeranaias/kbochat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete kbochat configuration.
type Config struct {
	// Answer service
	API APIConfig `toml:"api"`

	// Terminal UI
	UI UIConfig `toml:"ui"`

	// Logging
	Log LogConfig `toml:"log"`
}

// APIConfig locates the answer service.
type APIConfig struct {
	// BaseURL is the service root; /chat and /health are appended.
	BaseURL string `toml:"base_url"`
}

// UIConfig contains display preferences.
type UIConfig struct {
	// Theme is "auto", "dark", "light" or "notty".
	Theme string `toml:"theme"`
	// WordWrap caps the markdown wrap width. 0 follows the terminal width.
	WordWrap int `toml:"word_wrap"`
	// ShowTimestamps shows HH:MM next to answer badges.
	ShowTimestamps bool `toml:"show_timestamps"`
	// ExpandSources opens citation lists by default.
	ExpandSources bool `toml:"expand_sources"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	// Level is trace, debug, info, warn (warning), error or disabled (off).
	Level string `toml:"level"`
	// File is the log file path. Empty uses ~/.kbochat/kbochat.log.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTheme   = "auto"
	DefaultLevel   = "info"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		UI: UIConfig{
			Theme:          DefaultTheme,
			WordWrap:       0,
			ShowTimestamps: true,
			ExpandSources:  false,
		},
		Log: LogConfig{
			Level: DefaultLevel,
		},
	}
}

// SetDefaults fills empty fields with default values.
func (c *Config) SetDefaults() {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	c.API.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.API.BaseURL), "/")
	if c.UI.Theme == "" {
		c.UI.Theme = DefaultTheme
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	if c.Log.Level == "" {
		c.Log.Level = DefaultLevel
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the kbochat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".kbochat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the configured log file, or the default one.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kbochat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadFromPath loads configuration from path with full validation.
// A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// ApplyEnvOverrides applies KBOCHAT_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("KBOCHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("KBOCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("KBOCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KBOCHAT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Encode returns the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return buf.Bytes(), nil
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	data = append([]byte("# kbochat configuration file\n\n"), data...)
	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validThemes = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "api.base_url", Message: err.Error()})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "missing host"})
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must not be negative"})
	}

	if !logging.IsLevel(c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
