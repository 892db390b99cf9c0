// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/verity-tui/internal/config"
)

// =============================================================================
// CONFIG INSPECTION
// =============================================================================

// HandleConfig inspects the configuration: show, init, path.
func HandleConfig(p *ArgParser) error {
	switch p.Positional(0) {
	case "show":
		cfg, err := LoadConfig(p)
		if err != nil {
			return err
		}
		return toml.NewEncoder(os.Stdout).Encode(cfg)

	case "init":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s existe déjà", path)
		}
		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Println("Configuration écrite:", path)
		return nil

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		return errors.New("usage: verity config <show|init|path>")
	}
}
