// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// snapshot is the persisted form of a transcript.
type snapshot struct {
	SavedAt  time.Time `json:"saved_at"`
	Seq      uint64    `json:"seq"`
	Messages []Message `json:"messages"`
}

// MarshalSnapshot serializes the transcript for the key-value store.
func (t *Transcript) MarshalSnapshot() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := snapshot{SavedAt: time.Now(), Seq: t.seq}
	snap.Messages = make([]Message, len(t.messages))
	for i, m := range t.messages {
		snap.Messages[i] = *m
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("transcript: marshal snapshot: %w", err)
	}
	return string(data), nil
}

// RestoreSnapshot rebuilds a transcript from a stored snapshot. Restored
// messages are all forced terminal: a stream does not survive a restart, so
// whatever partial content was saved becomes the final content.
func RestoreSnapshot(data string) (*Transcript, error) {
	var snap snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("transcript: restore snapshot: %w", err)
	}

	t := New()
	t.seq = snap.Seq
	for i := range snap.Messages {
		m := snap.Messages[i]
		m.Terminal = true
		t.messages = append(t.messages, &m)
		t.byID[m.ID] = &m
	}
	return t, nil
}
