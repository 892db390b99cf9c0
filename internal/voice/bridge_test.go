// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"testing"
)

// =============================================================================
// LANGUAGE HINT TESTS
// =============================================================================

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty falls back", "", "fr-FR"},
		{"canonical passthrough", "fr-FR", "fr-FR"},
		{"case normalized", "FR-fr", "fr-FR"},
		{"english", "en-US", "en-US"},
		{"bare language", "fr", "fr"},
		{"garbage falls back", "not a tag!!", "fr-FR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLanguage(tt.in); got != tt.want {
				t.Errorf("normalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// LOCAL BRIDGE TESTS
// =============================================================================

func TestLocalBridge_CaptureUnavailable(t *testing.T) {
	b := newLocalBridge()

	_, err := b.StartCapture(context.Background(), "fr-FR")
	if !errors.Is(err, ErrCaptureUnavailable) {
		t.Errorf("Expected ErrCaptureUnavailable, got %v", err)
	}

	// Both must be safe without a capture in progress.
	b.StopCapture()
	b.HapticPulse()
}

func TestLocalBridge_SpeakEmptyIsNoOp(t *testing.T) {
	b := newLocalBridge()
	// Must not panic, spawn, or block even with no synthesizer installed.
	b.Speak("", "fr-FR")
}

// =============================================================================
// GATEWAY PROBE TESTS
// =============================================================================

func TestDetect_EmptyURLUsesLocal(t *testing.T) {
	b := Detect("")
	if _, ok := b.(*LocalBridge); !ok {
		t.Errorf("Empty gateway URL should select the local bridge, got %T", b)
	}
}

func TestDetect_UnreachableGatewayUsesLocal(t *testing.T) {
	b := Detect("ws://127.0.0.1:1/speech")
	if _, ok := b.(*LocalBridge); !ok {
		t.Errorf("Unreachable gateway should fall back to local, got %T", b)
	}
}
