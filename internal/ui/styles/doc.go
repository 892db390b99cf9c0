// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the verity TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection;
// the configured theme can force one profile.
package styles
