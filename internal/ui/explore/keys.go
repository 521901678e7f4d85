// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package explore provides the topic-exploration view for the TUI.
//
// This file defines keyboard bindings and shortcuts for the explorer.
package explore

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the explorer.
// Each binding supports multiple keys and includes help text.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Search     key.Binding
	Random     key.Binding
	Surprise   key.Binding
	Modify     key.Binding
	ToggleView key.Binding
	Recents    key.Binding
	Back       key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	Clear      key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings for the explorer.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Search: key.NewBinding(
			key.WithKeys("/", "ctrl+f"),
			key.WithHelp("/ or C-f", "search topic"),
		),
		Random: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "random topic"),
		),
		Surprise: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "surprise topic"),
		),
		Modify: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "modify content"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle combined view"),
		),
		Recents: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "recents"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("Bksp", "back to parent"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear history"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Random, k.Modify, k.ToggleView, k.Quit}
}

// FullHelp returns all bindings grouped for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Search, k.Random, k.Surprise, k.Back},
		{k.Modify, k.ToggleView, k.Recents, k.Clear},
		{k.Submit, k.Cancel, k.Quit},
	}
}
