// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/verity-tui/internal/settings"
	"github.com/jeranaias/verity-tui/internal/transcript"
	"github.com/jeranaias/verity-tui/internal/ui/styles"
)

// View renders the full screen.
func (m Model) View() string {
	if !m.ready {
		return "chargement..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.helpView())
	} else {
		b.WriteString(m.vp.View())
	}
	b.WriteString("\n")

	b.WriteString(m.quickPromptsView())
	b.WriteString("\n")

	if m.sealPrompt {
		b.WriteString(" " + m.phrase.View())
	} else {
		b.WriteString(styles.InputBox.Width(m.width).Render(m.input.View()))
	}
	b.WriteString("\n")

	b.WriteString(m.statusView())
	return b.String()
}

// =============================================================================
// SECTIONS
// =============================================================================

// headerView is the one-line title bar: brand, conversation preview, and
// connection badge.
func (m Model) headerView() string {
	title := styles.Header.Render("verity")

	preview := m.eng.Preview(40)
	if preview != "" {
		preview = styles.HeaderMeta.Render("  " + preview)
	}

	badge := styles.BadgeSimulated.Render("simulé")
	if m.eng.Live() {
		badge = styles.BadgeLive.Render("connecté")
	}

	left := title + preview
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(badge)
	if gap < 1 {
		left = runewidth.Truncate(left, m.width-lipgloss.Width(badge)-1, "…")
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + badge
}

// quickPromptsView is the row of one-tap prompt chips.
func (m Model) quickPromptsView() string {
	prompts := m.cfg.UI.QuickPrompts
	if len(prompts) == 0 || m.cfg.UI.CompactMode {
		return ""
	}

	var chips []string
	for i, p := range prompts {
		chip := runewidth.Truncate(p, 28, "…")
		if i == m.quickIdx {
			chips = append(chips, styles.QuickPromptActive.Render(chip))
		} else {
			chips = append(chips, styles.QuickPrompt.Render(chip))
		}
	}
	row := strings.Join(chips, "·")
	return runewidth.Truncate(row, m.width, "…")
}

// statusView is the bottom status line: mode badges, turn state, and the
// transient status message.
func (m Model) statusView() string {
	s := m.eng.Settings().Get()

	var parts []string
	if s.Mode == settings.ModePrivate {
		parts = append(parts, styles.BadgePrivate.Render("privé"))
	} else {
		parts = append(parts, styles.Badge.Render("public"))
	}
	if s.HybridEnabled {
		parts = append(parts, styles.Badge.Render("hybride"))
	} else {
		parts = append(parts, styles.Badge.Render("kernel"))
	}
	parts = append(parts, styles.Badge.Render(fmt.Sprintf("conseil %d", s.CouncilSize)))
	if s.TruthMode {
		parts = append(parts, styles.Badge.Render("vérité"))
	}
	if s.VoiceOutputEnabled {
		parts = append(parts, styles.Badge.Render("voix"))
	}
	if m.capturing {
		parts = append(parts, styles.BadgeLive.Render("écoute"))
	}

	if m.streaming {
		parts = append(parts, m.spin.View())
	} else if stats := m.eng.LastStats(); stats.Increments > 0 {
		parts = append(parts, styles.HeaderMeta.Render(
			fmt.Sprintf("%dms·%d incr", stats.FirstContent.Milliseconds(), stats.Increments)))
	}

	if m.status != "" {
		parts = append(parts, styles.FailNotice.Render(m.status))
	}

	line := strings.Join(parts, " ")
	return styles.StatusBar.Width(m.width).Render(runewidth.Truncate(line, m.width, "…"))
}

// helpView lists the key bindings grouped the way FullHelp returns them.
func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Raccourcis") + "\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, styles.Help.Render(h.Desc)))
		}
		b.WriteString("\n")
	}
	out := b.String()
	if m.vp.Height > 0 {
		lines := strings.Split(out, "\n")
		if len(lines) > m.vp.Height {
			lines = lines[:m.vp.Height]
		}
		for len(lines) < m.vp.Height {
			lines = append(lines, "")
		}
		out = strings.Join(lines, "\n")
	}
	return out
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// rebuild regenerates the viewport content from the transcript.
func (m *Model) rebuild(gotoBottom bool) {
	if !m.ready {
		return
	}

	messages := m.eng.Messages()
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
	}

	atBottom := m.vp.AtBottom()
	m.vp.SetContent(b.String())
	if gotoBottom || atBottom {
		m.vp.GotoBottom()
	}
}

// renderMessage formats one message for the viewport.
func (m *Model) renderMessage(msg transcript.Message) string {
	width := m.vp.Width - 4
	if width < 20 {
		width = 20
	}

	if m.cfg.UI.CompactMode {
		return m.renderCompact(msg)
	}

	switch msg.Role {
	case transcript.RoleUser:
		label := styles.HeaderMeta.Render("toi")
		body := styles.UserBubble.MaxWidth(width).Render(msg.Content)
		return label + "\n" + body + "\n"

	default:
		label := styles.HeaderMeta.Render("verity")
		body := styles.AssistantBubble.MaxWidth(width).Render(m.assistantContent(msg))
		out := label + "\n" + body + "\n"
		if msg.FailReason != "" {
			out += styles.FailNotice.Render("⚠ "+msg.FailReason) + "\n"
		}
		return out
	}
}

// renderCompact is the low-chrome layout: prefix markers, no borders.
func (m *Model) renderCompact(msg transcript.Message) string {
	switch msg.Role {
	case transcript.RoleUser:
		return styles.UserBubble.UnsetBorderStyle().Render("> "+msg.Content) + "\n"
	default:
		out := m.assistantContent(msg) + "\n"
		if msg.FailReason != "" {
			out += styles.FailNotice.Render("⚠ "+msg.FailReason) + "\n"
		}
		return out
	}
}

// assistantContent renders assistant markdown through glamour once the
// message is final; streaming text stays plain to keep repaints cheap.
func (m *Model) assistantContent(msg transcript.Message) string {
	if !msg.Terminal || msg.FailReason != "" || m.renderer == nil {
		if !msg.Terminal && msg.Content == "" {
			return m.spin.View() + " réflexion..."
		}
		return msg.Content
	}

	if cached, ok := m.rendered[msg.ID]; ok {
		return cached
	}
	out, err := m.renderer.Render(msg.Content)
	if err != nil {
		return msg.Content
	}
	out = strings.TrimRight(out, "\n")
	m.rendered[msg.ID] = out
	return out
}
