// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

// =============================================================================
// KEY-VALUE STORE TESTS
// =============================================================================

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenAt(":memory:")
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKV_GetMissing(t *testing.T) {
	kv := openTestKV(t)

	if _, err := kv.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestKV_PutGet(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Put("chat.session.id", "sess_x"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := kv.Get("chat.session.id")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "sess_x" {
		t.Errorf("Expected 'sess_x', got %q", got)
	}
}

func TestKV_PutOverwrites(t *testing.T) {
	kv := openTestKV(t)

	_ = kv.Put("k", "first")
	if err := kv.Put("k", "second"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	got, _ := kv.Get("k")
	if got != "second" {
		t.Errorf("Expected 'second', got %q", got)
	}
}

func TestKV_Delete(t *testing.T) {
	kv := openTestKV(t)

	_ = kv.Put("k", "v")
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := kv.Delete("never-existed"); err != nil {
		t.Errorf("Delete of absent key should be nil, got %v", err)
	}
}

func TestKV_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verity.db")

	kv, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	if err := kv.Put("chat.messages", `{"messages":[]}`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	kv2, err := OpenAt(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer kv2.Close()

	got, err := kv2.Get("chat.messages")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != `{"messages":[]}` {
		t.Errorf("Value lost across reopen: %q", got)
	}
}

func TestKV_EmptyValueRoundTrip(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Put("empty", ""); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := kv.Get("empty")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty value, got %q", got)
	}
}
