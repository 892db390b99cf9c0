// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package simulate

import (
	"context"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/jeranaias/verity-tui/internal/stream"
)

// =============================================================================
// REPLY SHAPE
// =============================================================================

// Openers for a simulated reply, picked pseudo-randomly per turn.
var openers = []string{
	"Bonne question !",
	"Voici une réponse claire :",
	"En résumé,",
	"Tu peux aussi essayer ceci :",
}

const (
	shortInputReply = "Je t'écoute. Donne-moi un peu plus de contexte."
	condenseNotice  = "Je vais condenser l'essentiel pour toi."
	closingOffer    = "Si tu veux, je peux détailler, simplifier, ou donner des exemples."
)

// Inter-increment delay bounds, tuned to feel like live token streaming.
const (
	minDelay = 12 * time.Millisecond
	maxDelay = 40 * time.Millisecond
)

// composeReply builds the full reply text for userText. The shape is
// deterministic; only the opener varies.
func composeReply(userText string) string {
	text := strings.TrimSpace(userText)
	if len([]rune(text)) < 4 {
		return shortInputReply
	}

	var sb strings.Builder
	sb.WriteString(openers[rand.Intn(len(openers))])
	if len([]rune(text)) > 140 {
		sb.WriteString(" ")
		sb.WriteString(condenseNotice)
	}
	sb.WriteString("\n\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")
	sb.WriteString(closingOffer)
	return sb.String()
}

// tokenize splits the reply into word and whitespace runs so increments
// feel like real token streaming.
func tokenize(s string) []string {
	var tokens []string
	var current strings.Builder
	var inSpace bool

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		isSpace := unicode.IsSpace(r)
		if current.Len() > 0 && isSpace != inSpace {
			flush()
		}
		inSpace = isSpace
		current.WriteRune(r)
	}
	flush()
	return tokens
}

// =============================================================================
// SIMULATED TURN
// =============================================================================

// Run is one simulated turn. It mirrors the live transport's surface as
// seen by the engine: an event channel and a Cancel.
type Run struct {
	events chan stream.Event
	cancel context.CancelFunc
}

// Start begins producing a simulated reply for userText. The returned Run
// is finite and cannot be restarted.
func Start(userText string) *Run {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Run{
		events: make(chan stream.Event, 16),
		cancel: cancel,
	}
	go r.play(ctx, composeReply(userText))
	return r
}

// Events returns the turn's event channel. Closed after the single
// complete event, or early on cancel.
func (r *Run) Events() <-chan stream.Event {
	return r.events
}

// Cancel stops the run; no further events are delivered.
func (r *Run) Cancel() {
	r.cancel()
}

// play emits the reply as incremental content events with a bounded random
// delay between increments, then exactly one complete event.
func (r *Run) play(ctx context.Context, reply string) {
	defer close(r.events)

	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for _, token := range tokenize(reply) {
		delay := minDelay + time.Duration(rand.Int63n(int64(maxDelay-minDelay)))
		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		select {
		case r.events <- stream.Event{Type: stream.EventContent, Text: token}:
		case <-ctx.Done():
			return
		}
	}

	select {
	case r.events <- stream.Event{Type: stream.EventComplete}:
	case <-ctx.Done():
	}
}
