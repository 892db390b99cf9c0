// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/verity-tui/internal/config"
	"github.com/jeranaias/verity-tui/internal/engine"
	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/storage"
	"github.com/jeranaias/verity-tui/internal/voice"
)

// =============================================================================
// UPDATE LOOP TESTS
// =============================================================================

func newTestModel(t *testing.T) Model {
	t.Helper()
	kv, err := storage.OpenAt(":memory:")
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	eng := engine.New(engine.Options{KV: kv, Settings: settings.NewStore(kv)})
	t.Cleanup(eng.Close)

	return New(eng, config.Default(), nil)
}

func asModel(t *testing.T, tm tea.Model) Model {
	t.Helper()
	m, ok := tm.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want chat.Model", tm)
	}
	return m
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestUpdate_ConfigReloadSwapsConfig(t *testing.T) {
	m := newTestModel(t)

	next := config.Default()
	next.UI.Theme = "light"
	next.UI.QuickPrompts = []string{"Raconte-moi ta journée"}

	got := asModel(t, must(m.Update(ConfigReloadedMsg{Cfg: next})))
	if got.cfg != next {
		t.Error("Reloaded config not adopted by the model")
	}
	if got.cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", got.cfg.UI.Theme)
	}
	if got.status != "Configuration rechargée" {
		t.Errorf("status = %q", got.status)
	}
}

func TestUpdate_ConfigReloadKeepsLayout(t *testing.T) {
	m := newTestModel(t)

	sized := asModel(t, must(m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})))
	if !sized.ready {
		t.Fatal("Model not ready after a window size message")
	}

	got := asModel(t, must(sized.Update(ConfigReloadedMsg{Cfg: config.Default()})))
	if got.width != 100 || got.height != 40 {
		t.Errorf("Dimensions lost on reload: %dx%d", got.width, got.height)
	}
	if !got.ready {
		t.Error("Model lost readiness on reload")
	}
}

// =============================================================================
// VOICE CAPTURE TEARDOWN
// =============================================================================

func TestUpdate_FinalCaptureReleasesContext(t *testing.T) {
	m := newTestModel(t)

	cancelled := false
	m.capturing = true
	m.captureCancel = func() { cancelled = true }
	m.captureCh = make(chan voice.CaptureEvent)

	got := asModel(t, must(m.Update(captureMsg(voice.CaptureEvent{
		PartialText: "bonjour à toi",
		IsFinal:     true,
	}))))

	if !cancelled {
		t.Error("Final transcript left the capture context alive")
	}
	if got.captureCancel != nil {
		t.Error("captureCancel still set after the final transcript")
	}
	if got.capturing {
		t.Error("Still marked capturing after the final transcript")
	}
	if got.input.Value() != "bonjour à toi" {
		t.Errorf("Input = %q", got.input.Value())
	}
}

func TestUpdate_PartialCaptureKeepsContext(t *testing.T) {
	m := newTestModel(t)

	cancelled := false
	m.capturing = true
	m.captureCancel = func() { cancelled = true }
	m.captureCh = make(chan voice.CaptureEvent)

	next, cmd := m.Update(captureMsg(voice.CaptureEvent{PartialText: "bonj"}))
	got := asModel(t, next)

	if cancelled {
		t.Error("Partial transcript cancelled the capture context")
	}
	if !got.capturing {
		t.Error("Partial transcript ended the capture")
	}
	if cmd == nil {
		t.Error("Partial transcript should re-arm the capture listener")
	}
}

func TestUpdate_ClosedCaptureChannelReleasesContext(t *testing.T) {
	m := newTestModel(t)

	cancelled := false
	m.capturing = true
	m.captureCancel = func() { cancelled = true }

	got := asModel(t, must(m.Update(captureEndedMsg{})))
	if !cancelled {
		t.Error("Closed capture channel left the context alive")
	}
	if got.captureCancel != nil || got.capturing {
		t.Error("Capture state not cleared after the channel closed")
	}
}

// must discards the command half of an Update result.
func must(tm tea.Model, _ tea.Cmd) tea.Model {
	return tm
}
