// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// UPDATES
// =============================================================================

// UpdateKind classifies an engine update.
type UpdateKind int

// Update kinds.
const (
	// UpdateContent means the streaming message grew; re-read the transcript.
	UpdateContent UpdateKind = iota
	// UpdateCompleted means the turn finished normally.
	UpdateCompleted
	// UpdateFailed means the turn ended with an error; Reason holds the
	// user-facing text.
	UpdateFailed
	// UpdateCancelled means the turn was cancelled; partial content stands.
	UpdateCancelled
	// UpdateResetDone means the conversation was reset.
	UpdateResetDone
)

// Update is one engine-side change the UI should repaint for.
type Update struct {
	Kind      UpdateKind
	MessageID string
	Reason    string
}

// =============================================================================
// TURN
// =============================================================================

// turn tracks one in-flight reply.
type turn struct {
	messageID string
	source    turnSource
	stats     *statsRecorder

	// cancelled is set by CancelTurn. The pump checks it so a terminal
	// event already buffered when the user cancelled is dropped instead
	// of resurrecting the turn.
	cancelled atomic.Bool
}

func newTurn(messageID string, source turnSource) *turn {
	return &turn{
		messageID: messageID,
		source:    source,
		stats:     newStatsRecorder(),
	}
}

// =============================================================================
// TURN STATS
// =============================================================================

// TurnStats is timing for one finished turn.
type TurnStats struct {
	StartedAt    time.Time
	FirstContent time.Duration // time to first increment; 0 if none arrived
	Duration     time.Duration
	Increments   int
	Chars        int
}

// statsRecorder accumulates stats as events arrive.
type statsRecorder struct {
	mu    sync.Mutex
	stats TurnStats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{stats: TurnStats{StartedAt: time.Now()}}
}

func (r *statsRecorder) contentReceived(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stats.Increments == 0 {
		r.stats.FirstContent = time.Since(r.stats.StartedAt)
	}
	r.stats.Increments++
	r.stats.Chars += n
}

func (r *statsRecorder) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Duration = time.Since(r.stats.StartedAt)
}

func (r *statsRecorder) snapshot() TurnStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
