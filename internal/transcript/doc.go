// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript owns the ordered message list for a chat session and
// the incremental assembly of streamed assistant replies.
//
// The Transcript is the single writer of message content: streamed fragments
// are merged into the right message in place via Append, and a turn ends in
// exactly one terminal operation (Finalize or Fail). Terminal operations are
// idempotent so duplicate terminal events racing with cancellation are safe.
package transcript
