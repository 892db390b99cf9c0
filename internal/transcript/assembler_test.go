// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"errors"
	"testing"
)

// =============================================================================
// ASSEMBLY TESTS
// =============================================================================

func TestAppend_OrderPreserved(t *testing.T) {
	tr := New()
	m := tr.AppendAssistant()

	for _, frag := range []string{"Bon", "jour", " le ", "monde"} {
		if err := tr.Append(m.ID, frag); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := tr.Finalize(m.ID)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if got != "Bonjour le monde" {
		t.Errorf("Expected 'Bonjour le monde', got %q", got)
	}
}

func TestAppend_UnknownID(t *testing.T) {
	tr := New()
	if err := tr.Append("msg_999", "x"); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Expected ErrUnknownMessage, got %v", err)
	}
	if _, err := tr.Finalize("msg_999"); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Expected ErrUnknownMessage, got %v", err)
	}
	if err := tr.Fail("msg_999", "boom"); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Expected ErrUnknownMessage, got %v", err)
	}
}

func TestAppend_AfterFinalizeIsNoOp(t *testing.T) {
	tr := New()
	m := tr.AppendAssistant()

	_ = tr.Append(m.ID, "partiel")
	if _, err := tr.Finalize(m.ID); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	// A late fragment racing the finalize must not mutate content.
	if err := tr.Append(m.ID, " tardif"); err != nil {
		t.Fatalf("Append after finalize should be a silent no-op, got %v", err)
	}

	got, _ := tr.Get(m.ID)
	if got.Content != "partiel" {
		t.Errorf("Content mutated after finalize: %q", got.Content)
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	tr := New()
	m := tr.AppendAssistant()
	_ = tr.Append(m.ID, "texte")

	first, err := tr.Finalize(m.ID)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	second, err := tr.Finalize(m.ID)
	if err != nil {
		t.Fatalf("Second Finalize failed: %v", err)
	}
	if first != second {
		t.Errorf("Finalize not idempotent: %q vs %q", first, second)
	}
}

func TestFail_FreezesContent(t *testing.T) {
	tr := New()
	m := tr.AppendAssistant()
	_ = tr.Append(m.ID, "avant la panne")

	if err := tr.Fail(m.ID, "stream interrupted"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	got, _ := tr.Get(m.ID)
	if !got.Terminal {
		t.Error("Message should be terminal after Fail")
	}
	if got.FailReason != "stream interrupted" {
		t.Errorf("Wrong fail reason: %q", got.FailReason)
	}
	if got.Content != "avant la panne" {
		t.Errorf("Partial content lost: %q", got.Content)
	}

	// Fail on an already-terminal message keeps the first reason.
	if err := tr.Fail(m.ID, "second reason"); err != nil {
		t.Fatalf("Second Fail should be a no-op, got %v", err)
	}
	got, _ = tr.Get(m.ID)
	if got.FailReason != "stream interrupted" {
		t.Errorf("Fail reason overwritten: %q", got.FailReason)
	}
}

func TestFinalize_AfterFailKeepsFrozenContent(t *testing.T) {
	tr := New()
	m := tr.AppendAssistant()
	_ = tr.Append(m.ID, "gelé")
	_ = tr.Fail(m.ID, "boom")

	got, err := tr.Finalize(m.ID)
	if err != nil {
		t.Fatalf("Finalize after Fail failed: %v", err)
	}
	if got != "gelé" {
		t.Errorf("Expected frozen content 'gelé', got %q", got)
	}
}

// =============================================================================
// ORDER AND PREVIEW TESTS
// =============================================================================

func TestMessages_DisplayOrder(t *testing.T) {
	tr := New()
	tr.AppendUser("premier")
	a := tr.AppendAssistant()
	_ = tr.Append(a.ID, "réponse")
	tr.AppendUser("second")

	msgs := tr.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "premier" || msgs[2].Content != "second" {
		t.Error("Insertion order not preserved")
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Error("Roles not preserved")
	}
}

func TestAppendUser_IsTerminal(t *testing.T) {
	tr := New()
	m := tr.AppendUser("salut")
	if !m.Terminal {
		t.Error("User messages should be terminal on append")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		maxRunes int
		want     string
	}{
		{"empty transcript", nil, 10, ""},
		{"short message", []string{"salut"}, 10, "salut"},
		{"truncated", []string{"une question assez longue"}, 10, "une que..."},
		{"newlines flattened", []string{"ligne un\nligne deux"}, 40, "ligne un ligne deux"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			for _, m := range tt.messages {
				tr.AppendUser(m)
			}
			if got := tr.Preview(tt.maxRunes); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestPreview_SkipsAssistantGreeting(t *testing.T) {
	tr := New()
	g := tr.AppendAssistant()
	_ = tr.Append(g.ID, "Salut !")
	_, _ = tr.Finalize(g.ID)

	if got := tr.Preview(20); got != "" {
		t.Errorf("Preview should skip assistant messages, got %q", got)
	}

	tr.AppendUser("ma question")
	if got := tr.Preview(20); got != "ma question" {
		t.Errorf("Preview = %q, want 'ma question'", got)
	}
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSnapshot_RoundTrip(t *testing.T) {
	tr := New()
	tr.AppendUser("question")
	a := tr.AppendAssistant()
	_ = tr.Append(a.ID, "réponse complète")
	_, _ = tr.Finalize(a.ID)

	data, err := tr.MarshalSnapshot()
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}

	restored, err := RestoreSnapshot(data)
	if err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}
	if restored.Len() != tr.Len() {
		t.Fatalf("Length mismatch: %d vs %d", restored.Len(), tr.Len())
	}

	got, err := restored.Get(a.ID)
	if err != nil {
		t.Fatalf("Restored message missing: %v", err)
	}
	if got.Content != "réponse complète" {
		t.Errorf("Content lost in round trip: %q", got.Content)
	}
}

func TestSnapshot_RestoreForcesTerminal(t *testing.T) {
	tr := New()
	a := tr.AppendAssistant()
	_ = tr.Append(a.ID, "interrompu par un crash")
	// Not finalized: simulates a save mid-stream.

	data, err := tr.MarshalSnapshot()
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}

	restored, err := RestoreSnapshot(data)
	if err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}
	got, _ := restored.Get(a.ID)
	if !got.Terminal {
		t.Error("Restored messages must be terminal")
	}
	if got.Content != "interrompu par un crash" {
		t.Errorf("Partial content lost: %q", got.Content)
	}
}

func TestSnapshot_RestoreGarbage(t *testing.T) {
	if _, err := RestoreSnapshot("not json at all"); err == nil {
		t.Error("Expected error for garbage snapshot")
	}
}

func TestSnapshot_NewIDsContinueAfterRestore(t *testing.T) {
	tr := New()
	tr.AppendUser("un")
	a := tr.AppendAssistant()
	_, _ = tr.Finalize(a.ID)

	data, _ := tr.MarshalSnapshot()
	restored, err := RestoreSnapshot(data)
	if err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	fresh := restored.AppendAssistant()
	if _, err := restored.Get(fresh.ID); err != nil {
		t.Fatalf("New message not addressable after restore: %v", err)
	}
	if fresh.ID == a.ID {
		t.Error("ID sequence reused after restore")
	}
}
