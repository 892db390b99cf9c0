// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the verity command line: argument parsing,
// subcommand routing, and the non-TUI surfaces (one-shot ask, plain
// terminal chat, seal management, config inspection).
package cli
