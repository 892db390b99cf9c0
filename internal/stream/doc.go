// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the per-turn server-push transport.
//
// One Handle is opened per turn and walks an explicit state machine:
//
//	Idle -> Connecting -> Streaming -> {Completed, Failed, Cancelled}
//
// Terminal states have no outgoing transitions. Cancellation wins every
// race: once a handle is cancelled, no further event is delivered, even if
// a terminal frame was already in flight. The transport never retries;
// retry policy belongs to the caller.
package stream
