// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/verity-tui/internal/engine"
	"github.com/jeranaias/verity-tui/internal/query"
	"github.com/jeranaias/verity-tui/internal/seal"
	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/ui/styles"
	"github.com/jeranaias/verity-tui/internal/voice"
)

// totpCodeRe matches a trailing authenticator code in the seal phrase input.
var totpCodeRe = regexp.MustCompile(`\s+(\d{6})$`)

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case updateMsg:
		cmd := m.handleEngineUpdate(engine.Update(msg))
		return m, tea.Batch(cmd, waitUpdate(m.eng))

	case updatesClosedMsg:
		return m, nil

	case frameMsg:
		if m.gate.Allow() {
			m.rebuild(true)
		}
		if m.streaming || m.gate.Pending() {
			return m, frameTick()
		}
		return m, nil

	case captureMsg:
		m.input.SetValue(msg.PartialText)
		if msg.IsFinal {
			m.endCapture()
			m.status = "Transcription reçue"
			return m, nil
		}
		return m, listenCapture(m.captureCh)

	case captureEndedMsg:
		m.endCapture()
		return m, nil

	case captureFailedMsg:
		m.endCapture()
		if errors.Is(msg.err, voice.ErrPermissionDenied) {
			m.status = "Micro refusé"
		} else {
			m.status = "Saisie vocale indisponible"
		}
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Cfg
		styles.Apply(m.cfg.UI.Theme)
		if m.ready {
			// Rebuilds the glamour renderer with the new theme and drops
			// the stale render cache.
			m.resize(m.width, m.height)
		}
		m.status = "Configuration rechargée"
		return m, nil
	}

	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.stopCapture()
		m.eng.Close()
		return m, tea.Quit
	}

	if m.sealPrompt {
		return m.handleSealKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		if m.streaming {
			m.eng.CancelTurn()
			return m, nil
		}
		m.status = ""
		m.showHelp = false
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.eng.Reset()
		return m, nil

	case key.Matches(msg, m.keys.ToggleMode):
		return m.toggleMode()

	case key.Matches(msg, m.keys.ToggleTruth):
		cur := m.eng.Settings().Get().TruthMode
		next := !cur
		m.eng.Settings().Set(settings.Patch{TruthMode: &next})
		return m, nil

	case key.Matches(msg, m.keys.ToggleWire):
		cur := m.eng.Settings().Get().HybridEnabled
		next := !cur
		m.eng.Settings().Set(settings.Patch{HybridEnabled: &next})
		return m, nil

	case key.Matches(msg, m.keys.ToggleVoice):
		cur := m.eng.Settings().Get().VoiceOutputEnabled
		next := !cur
		m.eng.Settings().Set(settings.Patch{VoiceOutputEnabled: &next})
		return m, nil

	case key.Matches(msg, m.keys.Capture):
		return m.toggleCapture()

	case key.Matches(msg, m.keys.CouncilUp):
		n := m.eng.Settings().Get().CouncilSize + 1
		m.eng.Settings().Set(settings.Patch{CouncilSize: &n})
		return m, nil

	case key.Matches(msg, m.keys.CouncilDown):
		n := m.eng.Settings().Get().CouncilSize - 1
		m.eng.Settings().Set(settings.Patch{CouncilSize: &n})
		return m, nil

	case key.Matches(msg, m.keys.QuickCycle):
		return m.cycleQuickPrompt()

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input as a new turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	_, err := m.eng.Submit(context.Background(), text)
	if errors.Is(err, query.ErrInvalidInput) {
		m.status = "Écris quelque chose d'abord"
		return m, nil
	}
	m.input.Reset()
	m.quickIdx = -1
	m.streaming = true
	m.status = ""
	m.rebuild(true)
	return m, frameTick()
}

// cycleQuickPrompt rotates through the configured quick prompts, filling
// the input with the selected one.
func (m Model) cycleQuickPrompt() (tea.Model, tea.Cmd) {
	prompts := m.cfg.UI.QuickPrompts
	if len(prompts) == 0 {
		return m, nil
	}
	m.quickIdx = (m.quickIdx + 1) % len(prompts)
	m.input.SetValue(prompts[m.quickIdx])
	m.input.CursorEnd()
	return m, nil
}

// =============================================================================
// PRIVATE MODE
// =============================================================================

// toggleMode flips public/private. Entering private with an enrolled seal
// first requires the phrase.
func (m Model) toggleMode() (tea.Model, tea.Cmd) {
	cur := m.eng.Settings().Get().Mode
	if cur == settings.ModePrivate {
		mode := settings.ModePublic
		m.eng.Settings().Set(settings.Patch{Mode: &mode})
		return m, nil
	}

	if m.seal != nil && m.seal.Enrolled() {
		m.sealPrompt = true
		m.phrase.Reset()
		m.phrase.Focus()
		m.input.Blur()
		return m, nil
	}

	mode := settings.ModePrivate
	m.eng.Settings().Set(settings.Patch{Mode: &mode})
	return m, nil
}

// handleSealKey runs the phrase prompt. A trailing 6-digit group is taken
// as the authenticator code.
func (m Model) handleSealKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeSealPrompt()
		return m, nil

	case tea.KeyEnter:
		phrase := m.phrase.Value()
		code := ""
		if match := totpCodeRe.FindStringSubmatch(phrase); match != nil {
			code = match[1]
			phrase = totpCodeRe.ReplaceAllString(phrase, "")
		}

		err := m.seal.Check(phrase, code)
		m.closeSealPrompt()
		if errors.Is(err, seal.ErrCheckFailed) {
			m.status = "Sceau refusé"
			return m, nil
		}
		if err != nil {
			m.status = "Vérification du sceau impossible"
			return m, nil
		}

		mode := settings.ModePrivate
		m.eng.Settings().Set(settings.Patch{Mode: &mode})
		m.status = "Mode privé activé"
		return m, nil
	}

	var cmd tea.Cmd
	m.phrase, cmd = m.phrase.Update(msg)
	return m, cmd
}

func (m *Model) closeSealPrompt() {
	m.sealPrompt = false
	m.phrase.Reset()
	m.phrase.Blur()
	m.input.Focus()
}

// =============================================================================
// VOICE CAPTURE
// =============================================================================

// toggleCapture starts or stops speech-to-text into the input field.
func (m Model) toggleCapture() (tea.Model, tea.Cmd) {
	bridge := m.eng.Voice()
	if bridge == nil {
		m.status = "Saisie vocale indisponible"
		return m, nil
	}

	if m.capturing {
		m.stopCapture()
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bridge.StartCapture(ctx, m.cfg.Voice.Language)
	if err != nil {
		cancel()
		return m, func() tea.Msg { return captureFailedMsg{err: err} }
	}

	m.captureCh = events
	m.capturing = true
	m.captureCancel = cancel
	m.status = "Je t'écoute..."
	return m, listenCapture(events)
}

// stopCapture ends any in-progress capture.
func (m *Model) stopCapture() {
	if !m.capturing {
		return
	}
	if bridge := m.eng.Voice(); bridge != nil {
		bridge.StopCapture()
	}
	m.endCapture()
}

// endCapture clears capture state once the channel delivered its final
// event, closed, or failed. The capture context must be cancelled here or
// it leaks with every recording.
func (m *Model) endCapture() {
	if m.captureCancel != nil {
		m.captureCancel()
		m.captureCancel = nil
	}
	m.capturing = false
	m.captureCh = nil
}

// =============================================================================
// ENGINE UPDATES
// =============================================================================

// handleEngineUpdate applies one engine update to the screen.
func (m *Model) handleEngineUpdate(u engine.Update) tea.Cmd {
	switch u.Kind {
	case engine.UpdateContent:
		m.gate.Mark()
		if m.gate.Allow() {
			m.rebuild(true)
		}
		return frameTick()

	case engine.UpdateCompleted:
		m.streaming = false
		m.gate.Force()
		m.rebuild(true)
		return nil

	case engine.UpdateFailed:
		m.streaming = false
		m.gate.Force()
		m.status = u.Reason
		m.rebuild(true)
		return nil

	case engine.UpdateCancelled:
		m.streaming = false
		m.gate.Force()
		m.status = "Réponse interrompue"
		m.rebuild(true)
		return nil

	case engine.UpdateResetDone:
		m.streaming = false
		m.gate.Force()
		m.status = "Nouvelle conversation"
		m.rendered = make(map[string]string)
		m.rebuild(true)
		return nil
	}
	return nil
}
