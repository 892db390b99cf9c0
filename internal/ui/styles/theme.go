// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME SELECTION
// =============================================================================

// Apply forces the lipgloss background profile for the configured theme.
// "auto" leaves terminal detection in charge.
func Apply(theme string) {
	switch strings.ToLower(theme) {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}
}

// GlamourStyle returns the glamour style name matching the active theme.
func GlamourStyle(theme string) string {
	switch strings.ToLower(theme) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	default:
		if termenv.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// Header is the one-line title bar.
	Header = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// HeaderMeta styles the session preview in the header.
	HeaderMeta = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Badge is the base pill for mode/provider indicators.
	Badge = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(TextPrimary).
		Background(SurfaceDim)

	// BadgeLive marks a configured remote endpoint.
	BadgeLive = Badge.Copy().Foreground(Emerald)

	// BadgeSimulated marks offline simulated replies.
	BadgeSimulated = Badge.Copy().Foreground(Amber)

	// BadgePrivate marks private mode.
	BadgePrivate = Badge.Copy().Foreground(Rose)

	// UserBubble wraps a user message.
	UserBubble = lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1)

	// AssistantBubble wraps an assistant message.
	AssistantBubble = lipgloss.NewStyle().
			Foreground(AssistantBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AssistantBubbleBorder).
			Padding(0, 1)

	// FailNotice styles the reason line under a failed turn.
	FailNotice = lipgloss.NewStyle().
			Foreground(FailNoticeFg).
			Italic(true)

	// StatusBar is the bottom status line.
	StatusBar = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim)

	// InputBox frames the prompt input.
	InputBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(Overlay)

	// QuickPrompt styles one quick prompt chip.
	QuickPrompt = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Padding(0, 1)

	// QuickPromptActive highlights the selected chip.
	QuickPromptActive = lipgloss.NewStyle().
				Foreground(Cyan).
				Bold(true).
				Padding(0, 1)

	// Help styles the help overlay text.
	Help = lipgloss.NewStyle().
		Foreground(TextMuted)
)
