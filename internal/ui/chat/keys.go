// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	Help        key.Binding
	NewChat     key.Binding
	ToggleMode  key.Binding
	ToggleTruth key.Binding
	ToggleWire  key.Binding
	ToggleVoice key.Binding
	Capture     key.Binding
	CouncilUp   key.Binding
	CouncilDown key.Binding
	QuickCycle  key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel reply"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "toggle help"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new conversation"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "public/private"),
		),
		ToggleTruth: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "truth mode"),
		),
		ToggleWire: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "hybrid/kernel"),
		),
		ToggleVoice: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "voice output"),
		),
		Capture: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "voice input"),
		),
		CouncilUp: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("C-up", "council +1"),
		),
		CouncilDown: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("C-down", "council -1"),
		),
		QuickCycle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "quick prompt"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Submit, k.Cancel, k.NewChat, k.QuickCycle},
		{k.ToggleMode, k.ToggleTruth, k.ToggleWire, k.CouncilUp, k.CouncilDown},
		{k.ToggleVoice, k.Capture, k.Help, k.Quit},
	}
}
