// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the stable conversation identity for this client
// install. The identifier is created once, persisted, and never mutated;
// storage failure degrades to an ephemeral in-memory id for the process run.
package session
