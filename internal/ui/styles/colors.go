// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the
// encyclopedia TUI. All colors use Lip Gloss AdaptiveColor for
// automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Indigo - Primary accent, topic titles, selections
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// IndigoDeep - Darker indigo for backgrounds
var IndigoDeep = lipgloss.AdaptiveColor{Light: "#3730A3", Dark: "#312E81"}

// Teal - Brand color, links, clickable topic words
var Teal = lipgloss.AdaptiveColor{Light: "#0D9488", Dark: "#2DD4BF"}

// TealDeep - Darker teal for backgrounds
var TealDeep = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#134E4A"}

// Gold - Highlights, the random-topic die, card titles
var Gold = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Crimson - Errors and the failed-generation panel
var Crimson = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// CrimsonDeep - Darker crimson for error backgrounds
var CrimsonDeep = lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#7F1D1D"}

// Moss - Success states, warm-cache indicator
var Moss = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Parchment - Main background
var Parchment = lipgloss.AdaptiveColor{Light: "#FDFDF8", Dark: "#1C1C28"}

// ParchmentDim - Header and footer background
var ParchmentDim = lipgloss.AdaptiveColor{Light: "#F4F4EC", Dark: "#16161E"}

// Rule - Borders and separators
var Rule = lipgloss.AdaptiveColor{Light: "#DDDDD0", Dark: "#32323F"}

// RuleDim - Less prominent borders
var RuleDim = lipgloss.AdaptiveColor{Light: "#CCCCBE", Dark: "#43434F"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// Ink - Main body text
var Ink = lipgloss.AdaptiveColor{Light: "#24292F", Dark: "#D5DAE8"}

// InkSecondary - Labels, breadcrumbs, metadata
var InkSecondary = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#A2A8BC"}

// InkMuted - Hints, timings, word counts
var InkMuted = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#6B7089"}

// InkInverse - Text on accent backgrounds
var InkInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#16161E"}
