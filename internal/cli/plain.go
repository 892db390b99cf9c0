// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/verity-tui/internal/config"
	"github.com/jeranaias/verity-tui/internal/query"
	"github.com/jeranaias/verity-tui/internal/settings"
)

// =============================================================================
// PLAIN TERMINAL CHAT
// =============================================================================

// historyFile keeps readline history under the config directory.
const historyFile = "plain_history"

// HandlePlain runs a line-based chat loop for terminals where the full
// TUI is unwanted: dumb terminals, scripts wrapping expect, ssh hops.
func HandlePlain(p *ArgParser) error {
	rt, err := NewRuntime(p)
	if err != nil {
		return err
	}
	defer rt.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := loadHistory(line)
	defer saveHistory(line, histPath)

	if rt.Eng.Live() {
		fmt.Println("verity — connecté. /aide pour les commandes.")
	} else {
		fmt.Println("verity — mode simulé (aucun service configuré). /aide pour les commandes.")
	}

	for {
		input, err := line.Prompt("toi> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := runSlashCommand(rt, input); quit {
				return nil
			}
			continue
		}

		msg, err := rt.Eng.Submit(context.Background(), input)
		if errors.Is(err, query.ErrInvalidInput) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "erreur:", err)
			continue
		}

		fmt.Print("verity> ")
		if err := streamReply(rt.Eng, msg.ID, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "erreur:", err)
		}
	}
}

// runSlashCommand executes one /command. Returns true to quit.
func runSlashCommand(rt *Runtime, input string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quitter", "q":
		return true

	case "nouveau":
		rt.Eng.Reset()
		// Drain the reset notification so the next reply starts clean.
		select {
		case <-rt.Eng.Updates():
		default:
		}
		fmt.Println("Nouvelle conversation.")

	case "mode":
		applyMode(rt, arg)

	case "conseil":
		var n int
		if _, err := fmt.Sscanf(arg, "%d", &n); err != nil {
			fmt.Println("usage: /conseil <1-5>")
			break
		}
		s := rt.Eng.Settings().Set(settings.Patch{CouncilSize: &n})
		fmt.Printf("Conseil: %d voix.\n", s.CouncilSize)

	case "statut":
		printStatus(rt)

	case "aide":
		fmt.Print(`Commandes:
  /nouveau          repartir de zéro
  /mode <public|privé>
  /conseil <1-5>    taille du conseil
  /statut           état de la session
  /quitter          sortir
`)

	default:
		fmt.Printf("Commande inconnue: /%s (essaie /aide)\n", cmd)
	}
	return false
}

// applyMode switches public/private. Entering private with an enrolled
// seal is refused here: the phrase prompt belongs to the TUI and the
// seal subcommand.
func applyMode(rt *Runtime, arg string) {
	switch arg {
	case "public":
		mode := settings.ModePublic
		rt.Eng.Settings().Set(settings.Patch{Mode: &mode})
		fmt.Println("Mode public.")
	case "privé", "prive", "private":
		if rt.Seal != nil && rt.Seal.Enrolled() {
			fmt.Println("Mode privé verrouillé : entre ta phrase dans l'interface (verity) ou gère le sceau avec `verity seal`.")
			break
		}
		mode := settings.ModePrivate
		rt.Eng.Settings().Set(settings.Patch{Mode: &mode})
		fmt.Println("Mode privé.")
	default:
		fmt.Println("usage: /mode <public|privé>")
	}
}

// printStatus mirrors the TUI status line in plain text.
func printStatus(rt *Runtime) {
	s := rt.Eng.Settings().Get()
	wire := "kernel"
	if s.HybridEnabled {
		wire = "hybride"
	}
	link := "simulé"
	if rt.Eng.Live() {
		link = "connecté"
	}
	fmt.Printf("session %s · %s · %s · %s · conseil %d\n",
		rt.Eng.Session().ID, link, s.Mode, wire, s.CouncilSize)
}

// =============================================================================
// HISTORY
// =============================================================================

func loadHistory(line *liner.State) string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, historyFile)
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	return path
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	_, _ = line.WriteHistory(f)
	_ = f.Close()
}
