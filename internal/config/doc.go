// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for verity.
//
// Configuration lives in TOML at ~/.verity/config.toml with sensible
// defaults, environment variable overrides, and validation. An optional
// file watcher reloads the config when it changes on disk, so endpoint
// edits take effect without restarting the client.
package config
