// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/verity-tui/internal/config"
	"github.com/jeranaias/verity-tui/internal/engine"
	"github.com/jeranaias/verity-tui/internal/seal"
	"github.com/jeranaias/verity-tui/internal/ui/styles"
	"github.com/jeranaias/verity-tui/internal/voice"
)

// =============================================================================
// MESSAGES
// =============================================================================

// updateMsg wraps one engine update for the Bubble Tea loop.
type updateMsg engine.Update

// updatesClosedMsg means the engine update channel closed.
type updatesClosedMsg struct{}

// frameMsg drives trailing repaints while a stream is behind the frame cap.
type frameMsg time.Time

// captureMsg wraps one voice transcript update.
type captureMsg voice.CaptureEvent

// captureEndedMsg means the capture channel closed.
type captureEndedMsg struct{}

// captureFailedMsg means capture could not start.
type captureFailedMsg struct{ err error }

// ConfigReloadedMsg carries a freshly validated configuration into the
// update loop. The watcher goroutine must never touch the model's config
// directly; delivering it as a message keeps every read and write on the
// Bubble Tea goroutine.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen.
type Model struct {
	eng  *engine.Engine
	cfg  *config.Config
	seal *seal.Seal
	keys KeyMap

	vp       viewport.Model
	input    textarea.Model
	phrase   textinput.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer
	gate     *RenderGate

	width  int
	height int
	ready  bool

	streaming  bool
	sealPrompt bool
	showHelp   bool
	status     string
	quickIdx   int

	capturing     bool
	captureCancel context.CancelFunc
	captureCh     <-chan voice.CaptureEvent

	// rendered caches glamour output for finished assistant messages.
	rendered map[string]string
}

// New builds the chat screen around an engine.
func New(eng *engine.Engine, cfg *config.Config, sl *seal.Seal) Model {
	input := textarea.New()
	input.Placeholder = "Écris ton message..."
	input.CharLimit = 4000
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	phrase := textinput.New()
	phrase.Placeholder = "Phrase du sceau"
	phrase.EchoMode = textinput.EchoPassword
	phrase.CharLimit = 256

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Model{
		eng:      eng,
		cfg:      cfg,
		seal:     sl,
		keys:     DefaultKeyMap(),
		input:    input,
		phrase:   phrase,
		spin:     spin,
		gate:     NewRenderGate(),
		quickIdx: -1,
		rendered: make(map[string]string),
	}
}

// Init starts the spinner and the engine update listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, textarea.Blink, waitUpdate(m.eng))
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitUpdate blocks on the next engine update.
func waitUpdate(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-eng.Updates()
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(u)
	}
}

// frameTick schedules the next frame while streaming.
func frameTick() tea.Cmd {
	return tea.Tick(defaultFrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// listenCapture blocks on the next voice transcript update.
func listenCapture(events <-chan voice.CaptureEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return captureEndedMsg{}
		}
		return captureMsg(ev)
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes component dimensions after a terminal size change.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - m.chromeHeight()
	if contentHeight < 3 {
		contentHeight = 3
	}

	if !m.ready {
		m.vp = viewport.New(width, contentHeight)
		m.ready = true
	} else {
		m.vp.Width = width
		m.vp.Height = contentHeight
	}
	m.input.SetWidth(width - 2)
	m.phrase.Width = width - 4

	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GlamourStyle(m.cfg.UI.Theme)),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = renderer
		// Cached output was wrapped for the old width.
		m.rendered = make(map[string]string)
	}

	m.rebuild(false)
}

// chromeHeight is everything around the viewport: header, quick prompts,
// input, status bar.
func (m *Model) chromeHeight() int {
	h := 1 + 1 + 1 // header + status + quick prompts
	if m.sealPrompt {
		h += 1
	} else {
		h += m.input.Height() + 1
	}
	return h
}
