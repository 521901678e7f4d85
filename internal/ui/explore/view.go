// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package explore

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/infinipedia-tui/internal/tree"
)

// View renders the explorer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("infinipedia")

	topic := "no topic"
	if node := m.deps.State.CurrentNode(); node != nil {
		topic = node.Topic
		if node.Cache.IsWarm() {
			topic += " " + m.theme.WarmBadge.Render("●")
		}
	}

	title := brand + "  " + m.theme.HeaderTopic.Render(topic)
	crumb := m.renderBreadcrumb()
	if crumb != "" {
		title += "\n" + crumb
	}
	return m.theme.Header.Width(max(m.width-2, 0)).Render(title)
}

// renderBreadcrumb shows the path from the root to the current node.
func (m Model) renderBreadcrumb() string {
	node := m.deps.State.CurrentNode()
	if node == nil {
		return ""
	}
	path := m.deps.State.NodePath(node.ID)
	if len(path) < 2 {
		return ""
	}
	sep := m.theme.BreadcrumbSeparator.Render(" › ")
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = m.theme.Breadcrumb.Render(n.Topic)
	}
	return strings.Join(parts, sep)
}

// =============================================================================
// BODY
// =============================================================================

func (m Model) renderBody() string {
	if m.mode == modeCombined {
		return m.viewport.View()
	}

	artWidth := m.artPanelWidth()
	if artWidth == 0 {
		return m.viewport.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderArtPanel(artWidth), m.viewport.View())
}

func (m Model) renderArtPanel(width int) string {
	style := m.theme.ArtPanel.Width(width - 2).Height(m.viewport.Height - 2)
	if m.artFallback {
		return style.Render(m.theme.ArtFallback.Render(m.art))
	}
	return style.Render(m.art)
}

// refreshViewport rebuilds the scrollable content from current view
// state.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) renderContent() string {
	if m.genErr != nil {
		return m.renderError()
	}
	if m.mode == modeCombined {
		return m.renderCombined()
	}
	return m.renderCards(m.cards) + m.renderQuestions()
}

// renderError shows the titled failure panel in place of content. Art
// stays visible in its own panel.
func (m *Model) renderError() string {
	body := m.theme.ErrorTitle.Render("Generation failed") + "\n\n" +
		m.theme.ErrorMessage.Render(m.genErr.Error()) + "\n\n" +
		m.theme.ErrorHint.Render("Search for a topic or press C-r for a random one.")
	return m.theme.ErrorBox.Width(max(m.viewport.Width-4, 10)).Render(body)
}

// renderCombined shows every cached node in chronological order.
func (m *Model) renderCombined() string {
	nodes := m.deps.State.ChronologicalNodes()
	var sections []string
	for _, node := range nodes {
		if !node.Cache.IsWarm() {
			continue
		}
		header := m.theme.HeaderTopic.Render(node.Topic) + "  " +
			m.theme.RecentTimestamp.Render(node.Timestamp.Format("15:04"))
		sections = append(sections, header+"\n"+m.renderCards(node.Cache.Cards))
	}
	if len(sections) == 0 {
		return m.theme.LoadingText.Render("Nothing cached yet. Explore some topics first.")
	}
	rule := m.theme.CardSeparator.Render(strings.Repeat("─", max(m.viewport.Width-2, 4)))
	return strings.Join(sections, "\n"+rule+"\n")
}

// renderCards turns the card list into rendered markdown.
func (m *Model) renderCards(cards []tree.CardData) string {
	if len(cards) == 0 {
		if m.loading {
			return m.theme.LoadingText.Render("Consulting the archive...")
		}
		return m.theme.LoadingText.Render("Search for a topic to begin.")
	}

	var md strings.Builder
	for i, card := range cards {
		if i > 0 {
			md.WriteString("\n\n")
		}
		if card.Title != "" {
			md.WriteString("## " + card.Title + "\n\n")
		}
		md.WriteString(card.Content)
	}

	if m.renderer == nil {
		return md.String()
	}
	rendered, err := m.renderer.Render(md.String())
	if err != nil {
		return md.String()
	}
	return rendered
}

// renderQuestions appends the best-effort follow-up questions.
func (m *Model) renderQuestions() string {
	if len(m.questions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, node := range m.deps.State.RecentNodes(4) {
		q, ok := m.questions[node.Topic]
		if !ok || q == "" {
			continue
		}
		b.WriteString(m.theme.QuestionTopic.Render(node.Topic) + " " +
			m.theme.QuestionItem.Render(q) + "\n")
	}
	return b.String()
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	width := max(m.width-2, 0)
	switch m.focus {
	case focusSearch:
		return m.theme.InputContainer.Width(width).Render(m.searchInput.View())
	case focusModify:
		return m.theme.InputContainer.Width(width).Render(m.modifyInput.View())
	case focusRecents:
		return m.theme.InputContainer.Width(width).Render(m.renderRecents())
	}
	hint := m.theme.InputPlaceholder.Render("Press / to search, Tab for recents")
	return m.theme.InputContainer.Width(width).Render(hint)
}

func (m Model) renderRecents() string {
	recents := m.deps.State.RecentNodes(m.recentLimit())
	if len(recents) == 0 {
		return m.theme.InputPlaceholder.Render("No recent topics yet")
	}
	var parts []string
	for i, node := range recents {
		label := node.Topic
		if node.Cache.IsWarm() {
			label += " " + m.theme.WarmBadge.Render("●")
		}
		if i == m.recentsIndex {
			parts = append(parts, m.theme.RecentSelected.Render(label))
		} else {
			parts = append(parts, m.theme.RecentItem.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.loading:
		left = m.spinner.View() + " " + m.theme.LoadingText.Render("generating "+m.currentTopic())
	case m.statusNote != "":
		left = m.theme.ShortcutDesc.Render(m.statusNote)
	default:
		left = m.renderShortcuts()
	}

	right := m.renderMeta()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(max(m.width, 0)).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderShortcuts() string {
	var parts []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// renderMeta shows generation timing and session word counts.
func (m Model) renderMeta() string {
	var parts []string
	if m.generationTime > 0 {
		label := m.generationTime.Round(10 * time.Millisecond).String()
		if m.fromCache {
			label += " (cached)"
		}
		parts = append(parts, m.theme.Timing.Render(label))
	}
	if m.deps.Tracker != nil && (m.deps.Config == nil || m.deps.Config.UI.ShowWordCounts) {
		s := m.deps.Tracker.Current()
		parts = append(parts, m.theme.WordCount.Render(
			fmt.Sprintf("words %d in / %d out", s.InputWords, s.OutputWords)))
	}
	return strings.Join(parts, "  ")
}
