// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice bridges speech capture and playback around the chat stream.
//
// Two variants sit behind one contract: a native device gateway reached
// over a websocket, and an in-runtime fallback that synthesizes through the
// host's speech command. The variant is selected once at startup by a pure
// capability check; callers never see which one is active. Synthesis
// failures are absorbed silently because voice output is an enhancement,
// never a required path.
package voice
