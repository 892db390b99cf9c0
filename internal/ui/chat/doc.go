// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the verity TUI.
//
// The model wraps one engine: keystrokes become submissions, settings
// toggles, and cancellations, while engine updates repaint the transcript.
// Rendering of streamed replies is frame-capped so fast token streams do
// not burn CPU on repaints nobody can see.
package chat
