// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable local storage for verity.
//
// Everything the client persists (session identity, settings, the transcript
// snapshot) goes through one flat key->string table in a SQLite database
// under the verity home directory. There is intentionally no richer schema:
// values are opaque strings, usually JSON, owned by the component that wrote
// them.
package storage
