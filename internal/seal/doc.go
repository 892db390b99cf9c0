// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package seal gates private mode behind an enrolled passphrase.
//
// The passphrase never touches disk: only a PBKDF2 hash and its salt are
// persisted, alongside an optional TOTP secret for a second factor. Until
// a seal is enrolled, private mode is freely switchable; after enrolment,
// switching to private requires a successful check.
package seal
