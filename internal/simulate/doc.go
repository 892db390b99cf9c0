// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package simulate provides the local responder used when no remote
// endpoint is configured or reachable.
//
// A simulated turn satisfies the same event contract the live transport
// gives the assembler: a finite sequence of content events terminated by
// exactly one complete event. There is no error path; local simulation
// cannot fail. Runs are not restartable.
package simulate
