// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine coordinates chat turns end to end.
//
// One engine owns the transcript, the turn lifecycle, and persistence.
// Submitting input composes a request from the live settings snapshot,
// opens the transport (or the offline simulator when no endpoint is
// configured), and pumps stream events into the transcript. At most one
// turn is active: a new submission cancels the previous turn, keeping its
// partial content.
package engine
