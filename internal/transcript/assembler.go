// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnknownMessage is returned when an operation names a message id that
// was never appended to this transcript.
var ErrUnknownMessage = errors.New("transcript: unknown message id")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered message sequence for one session. Insertion
// order is display order and is never re-sorted.
//
// All mutation goes through Transcript methods; callers receive copies.
type Transcript struct {
	mu       sync.Mutex
	messages []*Message
	byID     map[string]*Message
	seq      uint64
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{byID: make(map[string]*Message)}
}

// AppendUser appends a terminal user message and returns a copy of it.
func (t *Transcript) AppendUser(text string) Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.appendLocked(RoleUser, text)
	m.Terminal = true
	return *m
}

// AppendAssistant appends an empty assistant message ready to receive
// streamed fragments, and returns a copy of it.
func (t *Transcript) AppendAssistant() Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.appendLocked(RoleAssistant, "")
	return *m
}

func (t *Transcript) appendLocked(role Role, content string) *Message {
	t.seq++
	m := &Message{
		ID:        newMessageID(t.seq),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	t.messages = append(t.messages, m)
	t.byID[m.ID] = m
	return m
}

// Messages returns a copy of the transcript in display order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Message, len(t.messages))
	for i, m := range t.messages {
		out[i] = *m
	}
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Get returns a copy of the named message.
func (t *Transcript) Get(id string) (Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byID[id]
	if !ok {
		return Message{}, ErrUnknownMessage
	}
	return *m, nil
}

// =============================================================================
// INCREMENTAL ASSEMBLY
// =============================================================================

// Append merges a streamed fragment into the named message. A no-op on a
// terminal message: late fragments racing a cancel must not mutate content.
func (t *Transcript) Append(id, fragment string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byID[id]
	if !ok {
		return ErrUnknownMessage
	}
	if m.Terminal || fragment == "" {
		return nil
	}
	m.Content += fragment
	return nil
}

// Finalize marks the turn terminal and returns the final text. Idempotent:
// a second Finalize (or one following Fail) returns the frozen content
// without further mutation.
func (t *Transcript) Finalize(id string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byID[id]
	if !ok {
		return "", ErrUnknownMessage
	}
	m.Terminal = true
	return m.Content, nil
}

// Fail marks the turn terminal with no further mutation and records the
// user-facing reason. A no-op if the message is already terminal.
func (t *Transcript) Fail(id, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byID[id]
	if !ok {
		return ErrUnknownMessage
	}
	if m.Terminal {
		return nil
	}
	m.Terminal = true
	m.FailReason = reason
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Preview returns the first user message truncated for display, or "" when
// the transcript holds no user message yet.
func (t *Transcript) Preview(maxRunes int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.messages {
		if m.Role == RoleUser && m.Content != "" {
			return truncate(strings.ReplaceAll(m.Content, "\n", " "), maxRunes)
		}
	}
	return ""
}

// truncate shortens s to maxRunes runes, appending "..." when cut.
func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
