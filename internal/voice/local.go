// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/logging"
)

// =============================================================================
// IN-RUNTIME VARIANT
// =============================================================================

// speechCommands are probed in order; the first one on PATH wins.
var speechCommands = [][]string{
	{"say"},                // macOS
	{"espeak-ng", "-v"},    // Linux
	{"espeak", "-v"},       // Linux (legacy)
	{"spd-say", "-l"},      // speech-dispatcher
}

// LocalBridge synthesizes through the host's speech command. It has no
// capture path: StartCapture always reports the capability as unavailable.
type LocalBridge struct {
	log *zap.Logger

	// command is empty when no synthesizer was found; Speak is then a
	// silent no-op.
	command  string
	langFlag string

	mu      sync.Mutex
	current *exec.Cmd
}

// newLocalBridge probes PATH for a synthesizer.
func newLocalBridge() *LocalBridge {
	b := &LocalBridge{log: logging.Named("voice.local")}
	for _, candidate := range speechCommands {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			b.command = candidate[0]
			if len(candidate) > 1 {
				b.langFlag = candidate[1]
			}
			break
		}
	}
	return b
}

// StartCapture is unsupported in-runtime; text input remains usable.
func (b *LocalBridge) StartCapture(context.Context, string) (<-chan CaptureEvent, error) {
	return nil, ErrCaptureUnavailable
}

// StopCapture is a no-op; there is never a capture to stop.
func (b *LocalBridge) StopCapture() {}

// Speak runs the host synthesizer, killing any utterance still playing so
// at most one is audible. Fails silently without a synthesizer.
func (b *LocalBridge) Speak(text, languageHint string) {
	if b.command == "" || text == "" {
		return
	}

	b.mu.Lock()
	if b.current != nil && b.current.Process != nil {
		_ = b.current.Process.Kill()
	}

	args := []string{}
	if b.langFlag != "" {
		args = append(args, b.langFlag, normalizeLanguage(languageHint))
	}
	args = append(args, text)

	cmd := exec.Command(b.command, args...)
	if err := cmd.Start(); err != nil {
		b.log.Debug("synthesis start failed", zap.Error(err))
		b.current = nil
		b.mu.Unlock()
		return
	}
	b.current = cmd
	b.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		b.mu.Lock()
		if b.current == cmd {
			b.current = nil
		}
		b.mu.Unlock()
	}()
}

// HapticPulse has no in-runtime equivalent; always a no-op.
func (b *LocalBridge) HapticPulse() {}
