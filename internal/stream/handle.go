// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
)

// =============================================================================
// TURN STATES
// =============================================================================

// State is the lifecycle position of one turn's transport.
type State int

// States. Completed, Failed and Cancelled are terminal.
const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

// String returns a display name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// =============================================================================
// TURN HANDLE
// =============================================================================

// maxFrameSize caps a single frame line (64KB), matching the service limit.
const maxFrameSize = 64 * 1024

// Handle is the per-turn stream. Events are consumed from Events until the
// channel closes; the channel carries at most one terminal event.
type Handle struct {
	mu    sync.Mutex
	state State

	events chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// newHandle creates a handle already in Connecting: Open initiates the
// connection as part of handing the turn to its goroutine.
func newHandle(parent context.Context) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		state:  StateConnecting,
		events: make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Events returns the turn's event channel. Closed after the terminal
// transition.
func (h *Handle) Events() <-chan Event {
	return h.events
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Cancel moves the turn to Cancelled and releases the connection. Valid
// only from Connecting or Streaming; a no-op once terminal. After Cancel no
// further event is delivered: cancellation wins any race with an in-flight
// frame.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.state.Terminal() {
		h.mu.Unlock()
		return
	}
	h.state = StateCancelled
	h.mu.Unlock()
	h.cancel()
}

// content delivers a fragment, moving Connecting to Streaming on the first
// frame. Returns false when the turn is terminal and the pump should stop.
func (h *Handle) content(text string) bool {
	h.mu.Lock()
	if h.state.Terminal() {
		h.mu.Unlock()
		return false
	}
	h.state = StateStreaming
	h.mu.Unlock()

	select {
	case h.events <- Event{Type: EventContent, Text: text}:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// complete performs the Completed transition and emits the single terminal
// event. Suppressed when the turn is already terminal (cancellation wins).
func (h *Handle) complete() {
	h.terminal(StateCompleted, Event{Type: EventComplete})
}

// fail performs the Failed transition and emits the single error event.
// Suppressed when the turn is already terminal.
func (h *Handle) fail(reason string) {
	h.terminal(StateFailed, Event{Type: EventError, Message: reason})
}

func (h *Handle) terminal(next State, ev Event) {
	h.mu.Lock()
	if h.state.Terminal() {
		h.mu.Unlock()
		return
	}
	h.state = next
	h.mu.Unlock()

	select {
	case h.events <- ev:
	case <-h.ctx.Done():
	}
}

// close releases the turn's resources and closes the event channel. Called
// exactly once, from the pump goroutine's defer.
func (h *Handle) close() {
	h.cancel()
	close(h.events)
}

// =============================================================================
// FRAME PUMP
// =============================================================================

// frame is the wire shape of one newline-delimited JSON event. The service
// historically used both "content"/"text" and "message"/"error" field
// names; both are accepted.
type frame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Text    string `json:"text"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// pump reads frames from body until a terminal frame, a malformed frame, or
// a dropped connection. Frames arrive and are forwarded in order.
func (h *Handle) pump(body io.Reader) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

	for scanner.Scan() {
		select {
		case <-h.ctx.Done():
			return
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		// Tolerate SSE-framed payloads from older service builds.
		line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		if len(line) == 0 || bytes.Equal(line, []byte("[DONE]")) {
			continue
		}

		var f frame
		if err := json.Unmarshal(line, &f); err != nil {
			h.fail("malformed frame from service")
			return
		}

		switch f.Type {
		case "content":
			text := f.Content
			if text == "" {
				text = f.Text
			}
			if text == "" {
				continue
			}
			if !h.content(text) {
				return
			}
		case "complete":
			h.complete()
			return
		case "error":
			reason := f.Message
			if reason == "" {
				reason = f.Error
			}
			if reason == "" {
				reason = "stream interrupted by service"
			}
			h.fail(reason)
			return
		default:
			// Informational frames (e.g. "session") are skipped.
		}
	}

	// The stream ended without a terminal frame: a dropped connection.
	if h.State() == StateCancelled {
		return
	}
	h.fail("connection dropped mid-stream")
}
