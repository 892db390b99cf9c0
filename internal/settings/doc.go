// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the user-adjustable policy knobs for verity.
//
// The store is the single writer of settings state. Every change is
// persisted to the key-value store immediately, so a crash loses at most
// the in-flight turn, never committed preferences. Reads return value
// snapshots; a mutation mid-stream never retroactively changes a request
// already composed.
package settings
