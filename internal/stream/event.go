// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventType tags a stream event.
type EventType int

// Event types. Complete and Error are terminal: no event of any type may
// follow them for the same turn.
const (
	EventContent EventType = iota
	EventComplete
	EventError
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventContent:
		return "content"
	case EventComplete:
		return "complete"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one unit delivered to the message assembler, produced either by
// the live transport or by the fallback simulator.
type Event struct {
	Type EventType

	// Text carries the fragment for content events.
	Text string

	// Message carries the user-facing reason for error events.
	Message string
}
