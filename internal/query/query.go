// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query composes outbound request descriptors from user input and
// the live policy snapshot. Compose is a pure function: no I/O, no side
// effects, rejection only for empty input.
package query

import (
	"errors"
	"strings"

	"github.com/jeranaias/verity-tui/internal/session"
	"github.com/jeranaias/verity-tui/internal/settings"
)

// =============================================================================
// REQUEST DESCRIPTOR
// =============================================================================

// Provider selects where the remote service sources its reasoning.
type Provider string

// Providers. Hybrid lets the service blend an external model under local
// governance; kernel-only stays on the local reasoning core.
const (
	ProviderKernelOnly Provider = "kernel-only"
	ProviderHybrid     Provider = "hybrid"
)

// Default model hints per provider, matching what the service expects.
const (
	kernelModelHint = "local"
	hybridModelHint = "gpt-4o-mini"
)

// ErrInvalidInput rejects a submission that is empty after trimming. This
// is the only composer failure; it fires before any I/O.
var ErrInvalidInput = errors.New("query: empty input")

// Descriptor is one outbound turn request. Immutable once composed: a
// settings change mid-stream never alters an in-flight descriptor.
type Descriptor struct {
	Text        string
	SessionID   string
	Provider    Provider
	ModelHint   string
	Mode        settings.Mode
	CouncilSize int
	TruthMode   bool
}

// Compose builds the request descriptor for one turn from the trimmed user
// text, the session identity, and a settings snapshot.
func Compose(userText string, sess session.Session, cfg settings.Settings) (Descriptor, error) {
	text := strings.TrimSpace(userText)
	if text == "" {
		return Descriptor{}, ErrInvalidInput
	}

	provider := ProviderKernelOnly
	modelHint := kernelModelHint
	if cfg.HybridEnabled {
		provider = ProviderHybrid
		modelHint = hybridModelHint
	}

	return Descriptor{
		Text:        text,
		SessionID:   sess.ID,
		Provider:    provider,
		ModelHint:   modelHint,
		Mode:        cfg.Mode,
		CouncilSize: cfg.CouncilSize,
		TruthMode:   cfg.TruthMode,
	}, nil
}
