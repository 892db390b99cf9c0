// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/logging"
	"github.com/jeranaias/verity-tui/internal/storage"
)

// =============================================================================
// SESSION IDENTITY
// =============================================================================

// storageKey matches the key the original web client used for its session id.
const storageKey = "chat.session.id"

// Session is the stable conversation identity. Immutable for the process
// lifetime once returned.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// GetOrCreate returns the persisted session for this install, generating
// and persisting one on first run. There are no error conditions: when the
// store cannot be read or written the session is ephemeral for this run.
func GetOrCreate(kv *storage.KV) Session {
	log := logging.Named("session")

	if kv != nil {
		raw, err := kv.Get(storageKey)
		if err == nil {
			var s Session
			if jsonErr := json.Unmarshal([]byte(raw), &s); jsonErr == nil && s.ID != "" {
				return s
			}
			// Legacy installs stored the bare id string.
			if !strings.HasPrefix(raw, "{") && raw != "" {
				return Session{ID: raw, CreatedAt: time.Time{}}
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("session read failed", zap.Error(err))
		}
	}

	s := newSession()

	if kv != nil {
		if data, err := json.Marshal(s); err == nil {
			if err := kv.Put(storageKey, string(data)); err != nil {
				log.Warn("session persist failed, id is ephemeral", zap.Error(err))
			}
		}
	}
	return s
}

// newSession builds an identifier with time-based entropy and a random
// suffix. Collision probability is negligible; cryptographic uniqueness is
// not required here.
func newSession() Session {
	now := time.Now()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return Session{
		ID:        "sess_" + now.UTC().Format("20060102T150405") + "_" + suffix,
		CreatedAt: now,
	}
}
