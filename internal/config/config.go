// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete verity configuration.
type Config struct {
	Version string `toml:"version"`

	// Service configuration
	Service ServiceConfig `toml:"service"`

	// Voice configuration
	Voice VoiceConfig `toml:"voice"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`
}

// ServiceConfig describes the remote chat service.
type ServiceConfig struct {
	// Endpoint is the base URL of the chat service. Empty means no
	// service is configured and replies come from the offline simulator.
	Endpoint string `toml:"endpoint"`
	// ModelHint overrides the composed model hint when non-empty.
	ModelHint string `toml:"model_hint"`
}

// VoiceConfig describes the speech surfaces.
type VoiceConfig struct {
	// GatewayURL is the websocket URL of the device speech gateway.
	// Empty or unreachable falls back to in-process synthesis.
	GatewayURL string `toml:"gateway_url"`
	// Language is the BCP 47 hint passed to capture and synthesis.
	Language string `toml:"language"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// QuickPrompts are one-tap prompt shortcuts shown above the input.
	QuickPrompts []string `toml:"quick_prompts"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Path is the log file path (empty = ~/.verity/verity.log)
	Path string `toml:"path"`
	// Debug enables debug-level logging
	Debug bool `toml:"debug"`
	// MaxSizeMB is the rotation threshold for the log file
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is how many rotated files to keep
	MaxBackups int `toml:"max_backups"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Service: ServiceConfig{
			Endpoint:  "",
			ModelHint: "",
		},

		Voice: VoiceConfig{
			GatewayURL: "",
			Language:   "fr-FR",
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
			QuickPrompts: []string{
				"Résume notre conversation",
				"Explique plus simplement",
				"Donne un exemple concret",
			},
		},

		Log: LogConfig{
			Path:       "",
			Debug:      false,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the verity config directory (~/.verity).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".verity"), nil
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

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file is not an error; defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Voice.Language == "" {
		cfg.Voice.Language = defaults.Voice.Language
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = defaults.Log.MaxBackups
	}
}

// ApplyEnvOverrides applies VERITY_* environment variables over the
// loaded values. Environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("VERITY_ENDPOINT"); v != "" {
		c.Service.Endpoint = v
	}
	if v := os.Getenv("VERITY_MODEL_HINT"); v != "" {
		c.Service.ModelHint = v
	}
	if v := os.Getenv("VERITY_VOICE_GATEWAY"); v != "" {
		c.Voice.GatewayURL = v
	}
	if v := os.Getenv("VERITY_LANGUAGE"); v != "" {
		c.Voice.Language = v
	}
	if v := os.Getenv("VERITY_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("VERITY_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Service.Endpoint != "" {
		u, err := url.Parse(c.Service.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("service.endpoint must be an http(s) URL, got %q", c.Service.Endpoint)
		}
	}

	if c.Voice.GatewayURL != "" {
		u, err := url.Parse(c.Voice.GatewayURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return fmt.Errorf("voice.gateway_url must be a ws(s) URL, got %q", c.Voice.GatewayURL)
		}
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with owner-only
// permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# verity configuration file")
	fmt.Fprintln(file, "# Generated by verity - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
