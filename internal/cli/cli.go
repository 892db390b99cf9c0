// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
)

// =============================================================================
// COMMAND ROUTING
// =============================================================================

// Commands understood by the verity binary. The empty command opens the
// TUI.
const (
	CmdTUI     = ""
	CmdAsk     = "ask"
	CmdPlain   = "plain"
	CmdSeal    = "seal"
	CmdConfig  = "config"
	CmdVersion = "version"
	CmdHelp    = "help"
)

// Version metadata, injected at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Parse splits os.Args into a command and its parsed arguments. An
// unrecognized first argument is treated as the start of an ask query so
// `verity pourquoi le ciel est bleu` just works.
func Parse() (string, *ArgParser) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdTUI, NewArgParser(nil)
	}

	switch raw[0] {
	case CmdAsk, CmdPlain, CmdSeal, CmdConfig, CmdVersion, CmdHelp:
		return raw[0], NewArgParser(raw[1:])
	case "--help", "-h":
		return CmdHelp, NewArgParser(nil)
	case "--version", "-v":
		return CmdVersion, NewArgParser(nil)
	}

	p := NewArgParser(raw)
	if len(p.positional) > 0 {
		return CmdAsk, p
	}
	return CmdTUI, p
}

// HandleVersion prints version metadata.
func HandleVersion() {
	fmt.Printf("verity %s (%s, %s)\n", Version, Commit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`verity — compagnon de conversation en terminal

Usage:
  verity                     ouvre l'interface de chat
  verity ask <question>      pose une question et affiche la réponse
  verity plain               chat ligne par ligne, sans interface
  verity seal <sous-cmd>     gère le sceau du mode privé
                             (enroll | status | reset)
  verity config <sous-cmd>   inspecte la configuration (show | init | path)
  verity version             affiche la version
  verity help                affiche cette aide

Options:
  --endpoint <url>   service distant à utiliser pour cette session
  --model <nom>      indice de modèle transmis au service
  --config <chemin>  fichier de configuration alternatif
  --debug            journalisation détaillée

Sans service configuré, les réponses sont simulées localement.
`)
}
