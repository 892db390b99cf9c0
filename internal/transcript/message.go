// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE
// =============================================================================

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the transcript. Content of an assistant message
// grows append-only while its turn streams and freezes at the terminal event.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Terminal marks a message whose content can no longer change.
	// User messages are terminal from creation.
	Terminal bool `json:"terminal"`

	// FailReason carries the user-facing reason when a turn ended in Fail.
	FailReason string `json:"fail_reason,omitempty"`
}

// newMessageID builds an identifier that is unique and sorts in creation
// order (zero-padded sequence + random suffix).
func newMessageID(seq uint64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "msg_" + padSeq(seq) + "_" + suffix
}

// padSeq renders seq as a fixed-width decimal so lexicographic order matches
// numeric order for any realistic session length.
func padSeq(seq uint64) string {
	const width = 8
	digits := make([]byte, 0, width)
	if seq == 0 {
		digits = append(digits, '0')
	}
	for seq > 0 {
		digits = append([]byte{byte('0' + seq%10)}, digits...)
		seq /= 10
	}
	for len(digits) < width {
		digits = append([]byte{'0'}, digits...)
	}
	return string(digits)
}
