// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/storage"
	"github.com/jeranaias/verity-tui/internal/stream"
	"github.com/jeranaias/verity-tui/internal/voice"
)

// =============================================================================
// CANCELLATION RACE TESTS
// =============================================================================

// scriptedSource is a turnSource whose events are pre-buffered, modeling a
// transport that delivered frames before the pump got to run.
type scriptedSource struct {
	events    chan stream.Event
	cancelled bool
}

func (s *scriptedSource) Events() <-chan stream.Event { return s.events }
func (s *scriptedSource) Cancel()                     { s.cancelled = true }

// recordingBridge captures Speak calls.
type recordingBridge struct {
	mu     sync.Mutex
	spoken []string
}

func (b *recordingBridge) StartCapture(context.Context, string) (<-chan voice.CaptureEvent, error) {
	return nil, voice.ErrCaptureUnavailable
}
func (b *recordingBridge) StopCapture() {}
func (b *recordingBridge) Speak(text, _ string) {
	b.mu.Lock()
	b.spoken = append(b.spoken, text)
	b.mu.Unlock()
}
func (b *recordingBridge) HapticPulse() {}

func (b *recordingBridge) utterances() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.spoken...)
}

// TestCancelTurn_DropsBufferedTerminalEvent covers the race where the
// transport already pushed its complete event before the user cancelled:
// the cancel must win outright — one Cancelled update, no late Completed,
// no speech, content frozen at the partial.
func TestCancelTurn_DropsBufferedTerminalEvent(t *testing.T) {
	kv, err := storage.OpenAt(":memory:")
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	bridge := &recordingBridge{}
	store := settings.NewStore(kv)
	on := true
	store.Set(settings.Patch{VoiceOutputEnabled: &on})

	eng := New(Options{KV: kv, Settings: store, Voice: bridge})
	t.Cleanup(eng.Close)

	asst := eng.transcript.AppendAssistant()
	_ = eng.transcript.Append(asst.ID, "partiel")

	src := &scriptedSource{events: make(chan stream.Event, 4)}
	src.events <- stream.Event{Type: stream.EventContent, Text: " tardif"}
	src.events <- stream.Event{Type: stream.EventComplete}
	close(src.events)

	tr := newTurn(asst.ID, src)
	eng.mu.Lock()
	eng.current = tr
	eng.mu.Unlock()

	eng.CancelTurn()
	if !src.cancelled {
		t.Error("CancelTurn should cancel the source")
	}

	// The pump now drains what the transport had already buffered.
	eng.pump(tr)

	var kinds []UpdateKind
drain:
	for {
		select {
		case u := <-eng.Updates():
			kinds = append(kinds, u.Kind)
		default:
			break drain
		}
	}
	if len(kinds) != 1 || kinds[0] != UpdateCancelled {
		t.Errorf("Expected exactly one Cancelled update, got %v", kinds)
	}

	msg, err := eng.transcript.Get(asst.ID)
	if err != nil {
		t.Fatalf("Message missing: %v", err)
	}
	if msg.Content != "partiel" {
		t.Errorf("Buffered fragment mutated the cancelled reply: %q", msg.Content)
	}
	if !msg.Terminal {
		t.Error("Cancelled reply should be terminal")
	}

	if got := bridge.utterances(); len(got) != 0 {
		t.Errorf("Cancelled reply must not be spoken, got %v", got)
	}

	if eng.Streaming() {
		t.Error("Turn still live after cancel and drain")
	}
}
