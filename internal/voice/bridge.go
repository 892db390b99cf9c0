// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"

	"golang.org/x/text/language"
)

// =============================================================================
// BRIDGE CONTRACT
// =============================================================================

// Capture errors. Both leave text input fully usable; they are surfaced as
// a notice, never as a hard failure.
var (
	// ErrCaptureUnavailable means the platform lacks speech capture.
	ErrCaptureUnavailable = errors.New("voice: capture unavailable")

	// ErrPermissionDenied means the user refused microphone access.
	ErrPermissionDenied = errors.New("voice: capture permission denied")
)

// CaptureEvent is one transcript update from an in-progress capture.
// A capture emits zero or more partial events, then exactly one final
// event, then the channel closes.
type CaptureEvent struct {
	PartialText string
	IsFinal     bool
}

// Bridge is the capability-polymorphic speech surface.
type Bridge interface {
	// StartCapture begins listening and streams transcript updates.
	// Fails with ErrCaptureUnavailable or ErrPermissionDenied.
	StartCapture(ctx context.Context, languageHint string) (<-chan CaptureEvent, error)

	// StopCapture ends an in-progress capture early, emitting no further
	// events. Idempotent.
	StopCapture()

	// Speak plays synthesized audio for text, cancelling (not queueing)
	// any utterance still playing. Failures degrade to a no-op.
	Speak(text, languageHint string)

	// HapticPulse is best-effort tactile feedback; a no-op without the
	// capability.
	HapticPulse()
}

// defaultLanguage is used when a hint is absent or unparseable.
const defaultLanguage = "fr-FR"

// normalizeLanguage canonicalizes a BCP 47 hint, falling back to the
// default on garbage input.
func normalizeLanguage(hint string) string {
	if hint == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return defaultLanguage
	}
	return tag.String()
}
