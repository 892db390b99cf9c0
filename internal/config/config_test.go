// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// DEFAULTS AND LOADING TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Service.Endpoint != "" {
		t.Error("No endpoint should be configured by default")
	}
	if cfg.Voice.Language != "fr-FR" {
		t.Errorf("Default language = %q, want fr-FR", cfg.Voice.Language)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Default theme = %q, want dark", cfg.UI.Theme)
	}
	if len(cfg.UI.QuickPrompts) == 0 {
		t.Error("Default quick prompts missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Missing file should not error: %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Defaults not applied: theme %q", cfg.UI.Theme)
	}
}

func TestLoadFromPath_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[service]
endpoint = "https://chat.example.org"

[ui]
compact_mode = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Service.Endpoint != "https://chat.example.org" {
		t.Errorf("Endpoint not loaded: %q", cfg.Service.Endpoint)
	}
	if !cfg.UI.CompactMode {
		t.Error("CompactMode not loaded")
	}
	// Unspecified fields get defaults.
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme default not filled: %q", cfg.UI.Theme)
	}
	if cfg.Voice.Language != "fr-FR" {
		t.Errorf("Language default not filled: %q", cfg.Voice.Language)
	}
	if cfg.Log.MaxSizeMB != 10 {
		t.Errorf("Log rotation default not filled: %d", cfg.Log.MaxSizeMB)
	}
}

func TestLoadFromPath_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("this is { not toml"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("Expected decode error")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("VERITY_ENDPOINT", "https://env.example.org")
	t.Setenv("VERITY_LANGUAGE", "fr-CA")
	t.Setenv("VERITY_THEME", "light")
	t.Setenv("VERITY_DEBUG", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Service.Endpoint != "https://env.example.org" {
		t.Errorf("Endpoint override missed: %q", cfg.Service.Endpoint)
	}
	if cfg.Voice.Language != "fr-CA" {
		t.Errorf("Language override missed: %q", cfg.Voice.Language)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme override missed: %q", cfg.UI.Theme)
	}
	if !cfg.Log.Debug {
		t.Error("Debug override missed")
	}
}

func TestApplyEnvOverrides_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[service]
endpoint = "https://file.example.org"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("VERITY_ENDPOINT", "https://env.example.org")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Service.Endpoint != "https://env.example.org" {
		t.Errorf("Environment should win over file, got %q", cfg.Service.Endpoint)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"valid endpoint", func(c *Config) { c.Service.Endpoint = "http://localhost:3001" }, false},
		{"ftp endpoint", func(c *Config) { c.Service.Endpoint = "ftp://x" }, true},
		{"garbage endpoint", func(c *Config) { c.Service.Endpoint = "not a url" }, true},
		{"valid gateway", func(c *Config) { c.Voice.GatewayURL = "wss://device.local/speech" }, false},
		{"http gateway", func(c *Config) { c.Voice.GatewayURL = "https://device.local" }, true},
		{"auto theme", func(c *Config) { c.UI.Theme = "auto" }, false},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Service.Endpoint = "https://chat.example.org"
	cfg.UI.CompactMode = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Config file should be owner-only, got %v", info.Mode().Perm())
	}

	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), "# verity configuration file") {
		t.Error("Header comment missing")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if loaded.Service.Endpoint != "https://chat.example.org" {
		t.Errorf("Endpoint lost in round trip: %q", loaded.Service.Endpoint)
	}
	if !loaded.UI.CompactMode {
		t.Error("CompactMode lost in round trip")
	}
}
