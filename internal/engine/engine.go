// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/logging"
	"github.com/jeranaias/verity-tui/internal/query"
	"github.com/jeranaias/verity-tui/internal/session"
	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/simulate"
	"github.com/jeranaias/verity-tui/internal/storage"
	"github.com/jeranaias/verity-tui/internal/stream"
	"github.com/jeranaias/verity-tui/internal/transcript"
	"github.com/jeranaias/verity-tui/internal/voice"
)

// =============================================================================
// ENGINE
// =============================================================================

// transcriptKey matches the key the original web client used for its
// saved conversation.
const transcriptKey = "chat.messages"

// greetingText seeds an empty transcript so the first screen is never blank.
const greetingText = "Salut ! Je suis là pour toi. Pose ta question quand tu veux."

// turnSource is the per-turn surface shared by the live transport and the
// offline simulator.
type turnSource interface {
	Events() <-chan stream.Event
	Cancel()
}

// Engine drives the conversation. Safe for concurrent use.
type Engine struct {
	kv     *storage.KV
	store  *settings.Store
	sess   session.Session
	client *stream.Client
	voice  voice.Bridge
	lang   string
	log    *zap.Logger

	transcript *transcript.Transcript

	updates chan Update

	mu      sync.Mutex
	current *turn
	last    TurnStats
}

// Options configures a new engine. KV and Settings are required; a nil
// Voice disables speech output regardless of settings.
type Options struct {
	KV       *storage.KV
	Settings *settings.Store
	Client   *stream.Client
	Voice    voice.Bridge
	Language string
}

// New builds the engine, restoring the saved transcript and seeding a
// greeting when the conversation is empty.
func New(opts Options) *Engine {
	e := &Engine{
		kv:      opts.KV,
		store:   opts.Settings,
		sess:    session.GetOrCreate(opts.KV),
		client:  opts.Client,
		voice:   opts.Voice,
		lang:    opts.Language,
		log:     logging.Named("engine"),
		updates: make(chan Update, 256),
	}
	if e.client == nil {
		e.client = stream.NewClient("")
	}

	e.transcript = e.restore()
	if e.transcript.Len() == 0 {
		e.seed()
	}
	return e
}

// restore loads the saved conversation, or starts fresh when there is none
// or it is unreadable.
func (e *Engine) restore() *transcript.Transcript {
	if e.kv == nil {
		return transcript.New()
	}
	raw, err := e.kv.Get(transcriptKey)
	if errors.Is(err, storage.ErrNotFound) {
		return transcript.New()
	}
	if err != nil {
		e.log.Warn("transcript read failed, starting fresh", zap.Error(err))
		return transcript.New()
	}
	t, err := transcript.RestoreSnapshot(raw)
	if err != nil {
		e.log.Warn("saved transcript unreadable, starting fresh", zap.Error(err))
		return transcript.New()
	}
	return t
}

// seed appends the greeting as a finished assistant message.
func (e *Engine) seed() {
	m := e.transcript.AppendAssistant()
	_ = e.transcript.Append(m.ID, greetingText)
	_, _ = e.transcript.Finalize(m.ID)
	e.save()
}

// save persists the transcript. Failure degrades to in-memory history.
func (e *Engine) save() {
	if e.kv == nil {
		return
	}
	data, err := e.transcript.MarshalSnapshot()
	if err != nil {
		e.log.Error("snapshot transcript", zap.Error(err))
		return
	}
	if err := e.kv.Put(transcriptKey, data); err != nil {
		e.log.Warn("transcript save failed", zap.Error(err))
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Session returns the stable conversation identity.
func (e *Engine) Session() session.Session {
	return e.sess
}

// Messages returns the transcript in display order.
func (e *Engine) Messages() []transcript.Message {
	return e.transcript.Messages()
}

// Preview returns the first user message truncated for display.
func (e *Engine) Preview(maxRunes int) string {
	return e.transcript.Preview(maxRunes)
}

// Settings returns the live settings store.
func (e *Engine) Settings() *settings.Store {
	return e.store
}

// Voice returns the active speech bridge, or nil.
func (e *Engine) Voice() voice.Bridge {
	return e.voice
}

// Live reports whether a remote endpoint is configured; false means
// replies are simulated locally.
func (e *Engine) Live() bool {
	return e.client.IsConfigured()
}

// Updates returns the engine's update channel. The UI must drain it for
// the lifetime of the engine.
func (e *Engine) Updates() <-chan Update {
	return e.updates
}

// Streaming reports whether a turn is currently active.
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// LastStats returns timing for the most recently finished turn.
func (e *Engine) LastStats() TurnStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// Submit starts a new turn for userText. Any in-flight turn is cancelled
// first, its partial content kept. Returns the assistant message the reply
// will stream into, or query.ErrInvalidInput for empty input.
func (e *Engine) Submit(ctx context.Context, userText string) (transcript.Message, error) {
	desc, err := query.Compose(userText, e.sess, e.store.Get())
	if err != nil {
		return transcript.Message{}, err
	}

	e.CancelTurn()

	e.transcript.AppendUser(desc.Text)
	asst := e.transcript.AppendAssistant()
	e.save()

	source := e.open(ctx, desc)
	t := newTurn(asst.ID, source)

	e.mu.Lock()
	e.current = t
	e.mu.Unlock()

	go e.pump(t)
	return asst, nil
}

// open picks the live transport when an endpoint is configured, otherwise
// the offline simulator. The choice is invisible to the rest of the turn.
func (e *Engine) open(ctx context.Context, desc query.Descriptor) turnSource {
	h, err := e.client.Open(ctx, desc)
	if err == nil {
		return h
	}
	if !errors.Is(err, stream.ErrNoEndpoint) {
		e.log.Warn("transport open failed, simulating", zap.Error(err))
	}
	return simulate.Start(desc.Text)
}

// CancelTurn stops the active turn, freezing its partial content as final.
// A no-op when nothing is streaming.
func (e *Engine) CancelTurn() {
	e.mu.Lock()
	t := e.current
	e.current = nil
	e.mu.Unlock()

	if t == nil {
		return
	}
	t.cancelled.Store(true)
	t.source.Cancel()
	_, _ = e.transcript.Finalize(t.messageID)
	e.save()
	e.emit(Update{Kind: UpdateCancelled, MessageID: t.messageID})
}

// pump consumes the turn's events until its channel closes, applying each
// to the transcript. Cancellation wins every race: events that were
// already buffered when the turn was cancelled are dropped, so a late
// complete never follows the cancel and the frozen reply is never spoken.
func (e *Engine) pump(t *turn) {
	for ev := range t.source.Events() {
		if t.cancelled.Load() {
			continue
		}
		switch ev.Type {
		case stream.EventContent:
			t.stats.contentReceived(len(ev.Text))
			_ = e.transcript.Append(t.messageID, ev.Text)
			e.emit(Update{Kind: UpdateContent, MessageID: t.messageID})

		case stream.EventComplete:
			t.stats.finish()
			final, _ := e.transcript.Finalize(t.messageID)
			e.finishTurn(t)
			e.save()
			e.speak(final)
			e.emit(Update{Kind: UpdateCompleted, MessageID: t.messageID})
			return

		case stream.EventError:
			t.stats.finish()
			_ = e.transcript.Fail(t.messageID, ev.Message)
			e.finishTurn(t)
			e.save()
			e.emit(Update{Kind: UpdateFailed, MessageID: t.messageID, Reason: ev.Message})
			return
		}
	}
	// Channel closed without a terminal event: the turn was cancelled and
	// already finalized by CancelTurn.
	e.finishTurn(t)
}

// finishTurn clears the active turn if t still is it and records stats.
func (e *Engine) finishTurn(t *turn) {
	e.mu.Lock()
	if e.current == t {
		e.current = nil
	}
	e.last = t.stats.snapshot()
	e.mu.Unlock()
}

// speak plays the finished reply when voice output is enabled.
func (e *Engine) speak(text string) {
	if e.voice == nil || text == "" {
		return
	}
	if !e.store.Get().VoiceOutputEnabled {
		return
	}
	e.voice.Speak(text, e.lang)
}

// emit delivers an update without ever blocking the pump. Content updates
// may be dropped under backpressure; the UI re-reads the transcript on
// every update, so a dropped one only delays a repaint until the next.
func (e *Engine) emit(u Update) {
	select {
	case e.updates <- u:
	default:
		if u.Kind != UpdateContent {
			// Terminal updates must land; make room by evicting the oldest.
			select {
			case <-e.updates:
			default:
			}
			select {
			case e.updates <- u:
			default:
			}
		}
	}
}

// =============================================================================
// CONVERSATION RESET
// =============================================================================

// Reset abandons the conversation: cancels any turn, issues a fresh
// session identity, clears the transcript, and seeds a new greeting.
func (e *Engine) Reset() {
	e.CancelTurn()

	if e.kv != nil {
		_ = e.kv.Delete("chat.session.id")
		_ = e.kv.Delete(transcriptKey)
	}
	e.sess = session.GetOrCreate(e.kv)
	e.transcript = transcript.New()
	e.seed()
	e.emit(Update{Kind: UpdateResetDone})
}

// Close cancels any active turn and saves the transcript.
func (e *Engine) Close() {
	e.CancelTurn()
	e.save()
}
