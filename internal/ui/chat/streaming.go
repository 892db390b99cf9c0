// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"
)

// =============================================================================
// RENDER GATE
// =============================================================================

// RenderGate caps how often the streaming transcript is rebuilt. Token
// events can arrive far faster than any terminal can paint; the gate lets
// one rebuild through per frame interval and coalesces the rest.
//
// Thread-safety: updates arrive from the engine goroutine while rendering
// happens in the Bubble Tea loop.
type RenderGate struct {
	mu          sync.Mutex
	last        time.Time
	pending     bool
	minInterval time.Duration
}

// defaultFrameInterval is ~30fps: smooth but not wasteful.
const defaultFrameInterval = 33 * time.Millisecond

// NewRenderGate creates a gate at the default frame rate.
func NewRenderGate() *RenderGate {
	return &RenderGate{minInterval: defaultFrameInterval}
}

// Mark records that content changed since the last rebuild.
func (g *RenderGate) Mark() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = true
}

// Allow reports whether a rebuild should happen now. Returns true at most
// once per frame interval while changes are pending.
func (g *RenderGate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.pending {
		return false
	}
	if time.Since(g.last) < g.minInterval {
		return false
	}
	g.pending = false
	g.last = time.Now()
	return true
}

// Force clears the gate and allows an immediate rebuild. Used on terminal
// events so the final content is never held back by the frame cap.
func (g *RenderGate) Force() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = false
	g.last = time.Now()
}

// Pending reports whether a change is waiting behind the frame cap.
func (g *RenderGate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}
