// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/verity-tui/internal/config"
	"github.com/jeranaias/verity-tui/internal/engine"
	"github.com/jeranaias/verity-tui/internal/logging"
	"github.com/jeranaias/verity-tui/internal/seal"
	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/storage"
	"github.com/jeranaias/verity-tui/internal/stream"
	"github.com/jeranaias/verity-tui/internal/voice"
)

// =============================================================================
// SHARED BOOTSTRAP
// =============================================================================

// Runtime holds everything the command handlers need: the effective
// configuration and the wired conversation engine.
type Runtime struct {
	Cfg  *config.Config
	KV   *storage.KV
	Eng  *engine.Engine
	Seal *seal.Seal
}

// LoadConfig resolves the effective configuration: file, environment,
// then command-line flags, strongest last.
func LoadConfig(p *ArgParser) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path, ok := p.Flag("config"); ok {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	if v, ok := p.Flag("endpoint"); ok {
		cfg.Service.Endpoint = v
	}
	if v, ok := p.Flag("model"); ok {
		cfg.Service.ModelHint = v
	}
	if p.BoolFlag("debug") {
		cfg.Log.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalide: %w", err)
	}
	return cfg, nil
}

// NewRuntime boots logging, storage, and the engine for a command. The
// caller must Close it.
func NewRuntime(p *ArgParser) (*Runtime, error) {
	cfg, err := LoadConfig(p)
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Options{
		Path:       cfg.Log.Path,
		Debug:      cfg.Log.Debug,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	kv, err := storage.Open()
	if err != nil {
		return nil, fmt.Errorf("ouverture du stockage: %w", err)
	}

	eng := engine.New(engine.Options{
		KV:       kv,
		Settings: settings.NewStore(kv),
		Client:   stream.NewClient(cfg.Service.Endpoint),
		Voice:    voice.Detect(cfg.Voice.GatewayURL),
		Language: cfg.Voice.Language,
	})

	return &Runtime{Cfg: cfg, KV: kv, Eng: eng, Seal: seal.New(kv)}, nil
}

// Close releases the runtime's resources.
func (r *Runtime) Close() {
	r.Eng.Close()
	_ = r.KV.Close()
	logging.Sync()
}
