// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command verity is a terminal chat companion. It talks to a remote
// conversation service when one is configured and simulates replies
// locally when none is, so the interface works the same either way.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/cli"
	"github.com/jeranaias/verity-tui/internal/config"
	"github.com/jeranaias/verity-tui/internal/engine"
	"github.com/jeranaias/verity-tui/internal/logging"
	"github.com/jeranaias/verity-tui/internal/seal"
	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/storage"
	"github.com/jeranaias/verity-tui/internal/stream"
	"github.com/jeranaias/verity-tui/internal/ui/chat"
	"github.com/jeranaias/verity-tui/internal/ui/styles"
	"github.com/jeranaias/verity-tui/internal/voice"
)

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdPlain:
		err = cli.HandlePlain(args)
	case cli.CmdSeal:
		err = cli.HandleSeal(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		err = runTUI(args)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "verity:", err)
		os.Exit(1)
	}
}

// runTUI wires the full engine and hands the terminal to Bubble Tea.
func runTUI(args *cli.ArgParser) error {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	logging.Init(logging.Options{
		Path:       cfg.Log.Path,
		Debug:      cfg.Log.Debug,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logging.Sync()
	log := logging.Named("main")

	kv, err := storage.Open()
	if err != nil {
		return fmt.Errorf("ouverture du stockage: %w", err)
	}
	defer kv.Close()

	eng := engine.New(engine.Options{
		KV:       kv,
		Settings: settings.NewStore(kv),
		Client:   stream.NewClient(cfg.Service.Endpoint),
		Voice:    voice.Detect(cfg.Voice.GatewayURL),
		Language: cfg.Voice.Language,
	})
	defer eng.Close()

	styles.Apply(cfg.UI.Theme)

	model := chat.New(eng, cfg, seal.New(kv))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Edits to config.toml take effect without a restart. The reload is
	// handed to the update loop as a message; the watcher goroutine never
	// touches state the UI reads.
	if path, err := config.ConfigPath(); err == nil {
		watcher, werr := config.NewWatcher(path, func(next *config.Config) {
			program.Send(chat.ConfigReloadedMsg{Cfg: next})
		})
		if werr != nil {
			log.Debug("config watcher unavailable", zap.Error(werr))
		} else {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("interface: %w", err)
	}
	return nil
}
