// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/logging"
	"github.com/jeranaias/verity-tui/internal/storage"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Mode selects the reasoning policy applied by the remote service.
type Mode string

// Modes.
const (
	ModePublic  Mode = "public"
	ModePrivate Mode = "private"
)

// Council size bounds. Writes outside the range clamp to the nearest bound.
const (
	MinCouncilSize = 1
	MaxCouncilSize = 5
)

// Settings is the full user policy. Read by the query composer on every
// turn; a change mid-stream affects only the next turn.
type Settings struct {
	Mode               Mode `json:"mode"`
	CouncilSize        int  `json:"council_size"`
	TruthMode          bool `json:"truth_mode"`
	HybridEnabled      bool `json:"hybrid_enabled"`
	VoiceOutputEnabled bool `json:"voice_output_enabled"`
}

// Default returns the out-of-box policy.
func Default() Settings {
	return Settings{
		Mode:               ModePublic,
		CouncilSize:        1,
		TruthMode:          true,
		HybridEnabled:      true,
		VoiceOutputEnabled: false,
	}
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Mode               *Mode
	CouncilSize        *int
	TruthMode          *bool
	HybridEnabled      *bool
	VoiceOutputEnabled *bool
}

// =============================================================================
// STORE
// =============================================================================

// storageKey is the flat key the policy persists under.
const storageKey = "settings"

// Store owns the settings value and its persistence.
type Store struct {
	mu      sync.Mutex
	current Settings
	kv      *storage.KV // nil degrades to in-memory only
	log     *zap.Logger

	subscribers []func(Settings)
}

// NewStore loads persisted settings from kv, falling back to defaults on
// first run or on unreadable state. A nil kv yields an ephemeral store.
func NewStore(kv *storage.KV) *Store {
	s := &Store{
		current: Default(),
		kv:      kv,
		log:     logging.Named("settings"),
	}

	if kv == nil {
		return s
	}

	raw, err := kv.Get(storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s
	}
	if err != nil {
		s.log.Warn("load failed, using defaults", zap.Error(err))
		return s
	}

	var loaded Settings
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.log.Warn("stored settings unreadable, using defaults", zap.Error(err))
		return s
	}
	s.current = sanitize(loaded)
	return s
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set applies a partial update, clamps, persists immediately, and returns
// the resulting settings.
func (s *Store) Set(p Patch) Settings {
	s.mu.Lock()

	next := s.current
	if p.Mode != nil {
		next.Mode = *p.Mode
	}
	if p.CouncilSize != nil {
		next.CouncilSize = *p.CouncilSize
	}
	if p.TruthMode != nil {
		next.TruthMode = *p.TruthMode
	}
	if p.HybridEnabled != nil {
		next.HybridEnabled = *p.HybridEnabled
	}
	if p.VoiceOutputEnabled != nil {
		next.VoiceOutputEnabled = *p.VoiceOutputEnabled
	}
	next = sanitize(next)
	s.current = next

	s.persistLocked()
	subs := make([]func(Settings), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn to run after every committed change. Callbacks run
// outside the store lock, on the mutating goroutine.
func (s *Store) Subscribe(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// persistLocked writes the current value through the KV store. Persistence
// failure degrades to in-memory state for this run.
func (s *Store) persistLocked() {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(s.current)
	if err != nil {
		s.log.Error("marshal settings", zap.Error(err))
		return
	}
	if err := s.kv.Put(storageKey, string(data)); err != nil {
		s.log.Warn("persist failed, keeping in-memory value", zap.Error(err))
	}
}

// sanitize enforces field invariants on any value about to become current.
func sanitize(v Settings) Settings {
	if v.Mode != ModePublic && v.Mode != ModePrivate {
		v.Mode = ModePublic
	}
	if v.CouncilSize < MinCouncilSize {
		v.CouncilSize = MinCouncilSize
	}
	if v.CouncilSize > MaxCouncilSize {
		v.CouncilSize = MaxCouncilSize
	}
	return v
}
