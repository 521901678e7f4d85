// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Compact drops borders and tightens padding for small terminals.
	Compact bool

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header              lipgloss.Style
	HeaderTopic         lipgloss.Style
	HeaderBrand         lipgloss.Style
	Breadcrumb          lipgloss.Style
	BreadcrumbSeparator lipgloss.Style

	// ==========================================================================
	// CARD STYLES
	// ==========================================================================

	Card          lipgloss.Style
	CardTitle     lipgloss.Style
	CardLead      lipgloss.Style
	CardSeparator lipgloss.Style

	// ==========================================================================
	// ART PANEL STYLES
	// ==========================================================================

	ArtPanel    lipgloss.Style
	ArtFallback lipgloss.Style

	// ==========================================================================
	// SEARCH AND MODIFY INPUT STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// RECENTS AND TREE STYLES
	// ==========================================================================

	RecentsPanel    lipgloss.Style
	RecentItem      lipgloss.Style
	RecentSelected  lipgloss.Style
	RecentTimestamp lipgloss.Style
	WarmBadge       lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	WordCount    lipgloss.Style
	Timing       lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner     lipgloss.Style
	LoadingText lipgloss.Style

	// ==========================================================================
	// ERROR PANEL STYLES
	// ==========================================================================

	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
	ErrorHint    lipgloss.Style

	// ==========================================================================
	// RELATED QUESTIONS STYLES
	// ==========================================================================

	QuestionItem  lipgloss.Style
	QuestionTopic lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
//
// mode forces the palette: "dark" or "light" overrides terminal
// background detection, anything else (including "auto") detects.
func NewTheme(mode string, compact bool) *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}

	// AdaptiveColor picks its variant from the renderer, so a forced
	// mode has to be pushed down or the palette ignores it.
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
		Compact:      compact,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	hpad := 2
	if t.Compact {
		hpad = 1
	}

	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Background(ParchmentDim).
		Padding(0, hpad)
	if !t.Compact {
		t.Header = t.Header.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Rule)
	}

	t.HeaderTopic = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.Breadcrumb = lipgloss.NewStyle().
		Foreground(InkSecondary)

	t.BreadcrumbSeparator = lipgloss.NewStyle().
		Foreground(InkMuted)

	// Cards
	t.Card = lipgloss.NewStyle().Padding(0, hpad)
	if !t.Compact {
		t.Card = t.Card.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Rule)
	}

	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold)

	t.CardLead = lipgloss.NewStyle().
		Foreground(Ink)

	t.CardSeparator = lipgloss.NewStyle().
		Foreground(RuleDim)

	// Art panel
	t.ArtPanel = lipgloss.NewStyle().
		Foreground(Teal).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(RuleDim).
		Padding(0, 1)

	t.ArtFallback = lipgloss.NewStyle().
		Foreground(InkSecondary)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderBottom(true).
		BorderForeground(Rule).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(Ink)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(InkMuted).
		Italic(true)

	// Recents
	t.RecentsPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rule).
		Padding(0, 1)

	t.RecentItem = lipgloss.NewStyle().
		Foreground(Ink).
		Padding(0, 1)

	t.RecentSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(InkInverse).
		Bold(true).
		Padding(0, 1)

	t.RecentTimestamp = lipgloss.NewStyle().
		Foreground(InkMuted)

	t.WarmBadge = lipgloss.NewStyle().
		Foreground(Moss)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(ParchmentDim).
		Foreground(InkSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(InkMuted)

	t.WordCount = lipgloss.NewStyle().
		Foreground(InkMuted)

	t.Timing = lipgloss.NewStyle().
		Foreground(InkMuted).
		Italic(true)

	// Spinner
	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.LoadingText = lipgloss.NewStyle().
		Foreground(InkSecondary).
		Italic(true)

	// Error panel
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Crimson).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Crimson)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(Ink)

	t.ErrorHint = lipgloss.NewStyle().
		Foreground(InkMuted).
		Italic(true)

	// Related questions
	t.QuestionItem = lipgloss.NewStyle().
		Foreground(InkSecondary).
		Italic(true)

	t.QuestionTopic = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
