// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/verity-tui/internal/seal"
	"github.com/jeranaias/verity-tui/internal/storage"
)

// =============================================================================
// SEAL MANAGEMENT
// =============================================================================

// HandleSeal manages the private-mode seal: enroll, status, reset.
func HandleSeal(p *ArgParser) error {
	kv, err := storage.Open()
	if err != nil {
		return fmt.Errorf("ouverture du stockage: %w", err)
	}
	defer kv.Close()

	sl := seal.New(kv)

	switch p.Positional(0) {
	case "enroll":
		return sealEnroll(sl, p.BoolFlag("totp"))
	case "status":
		if sl.Enrolled() {
			fmt.Println("Sceau en place. Le mode privé demande la phrase.")
		} else {
			fmt.Println("Aucun sceau. Le mode privé est libre d'accès.")
		}
		return nil
	case "reset":
		return sealReset(sl)
	default:
		return errors.New("usage: verity seal <enroll|status|reset> [--totp]")
	}
}

// sealEnroll records a new seal phrase, read twice without echo.
func sealEnroll(sl *seal.Seal, withTOTP bool) error {
	if sl.Enrolled() {
		return errors.New("un sceau existe déjà; utilise `verity seal reset` d'abord")
	}

	phrase, err := readSecret("Phrase du sceau (8 caractères minimum): ")
	if err != nil {
		return err
	}
	confirm, err := readSecret("Confirme la phrase: ")
	if err != nil {
		return err
	}
	if phrase != confirm {
		return errors.New("les phrases ne correspondent pas")
	}

	otpauthURL, err := sl.Enroll(phrase, withTOTP)
	if errors.Is(err, seal.ErrPhraseTooShort) {
		return errors.New("phrase trop courte (8 caractères minimum)")
	}
	if err != nil {
		return err
	}

	fmt.Println("Sceau en place.")
	if otpauthURL != "" {
		fmt.Println("Ajoute ce secret à ton application d'authentification:")
		fmt.Println("  " + otpauthURL)
	}
	return nil
}

// sealReset removes the seal after verifying the current phrase.
func sealReset(sl *seal.Seal) error {
	if !sl.Enrolled() {
		fmt.Println("Aucun sceau à retirer.")
		return nil
	}

	phrase, err := readSecret("Phrase actuelle: ")
	if err != nil {
		return err
	}
	code := ""
	if c := strings.TrimSpace(promptLine("Code d'authentification (entrée si aucun): ")); c != "" {
		code = c
	}

	if err := sl.Reset(phrase, code); err != nil {
		if errors.Is(err, seal.ErrCheckFailed) {
			return errors.New("sceau refusé")
		}
		return err
	}
	fmt.Println("Sceau retiré.")
	return nil
}

// readSecret prompts for a line without echoing it.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("lecture de la phrase: %w", err)
	}
	return string(raw), nil
}

// promptLine reads one echoed line from stdin.
func promptLine(prompt string) string {
	fmt.Print(prompt)
	var line string
	_, _ = fmt.Scanln(&line)
	return line
}
