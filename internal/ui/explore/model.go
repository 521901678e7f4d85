// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package explore

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/infinipedia-tui/internal/config"
	"github.com/jeranaias/infinipedia-tui/internal/engine"
	"github.com/jeranaias/infinipedia-tui/internal/telemetry"
	"github.com/jeranaias/infinipedia-tui/internal/tree"
	"github.com/jeranaias/infinipedia-tui/internal/ui/styles"
	"github.com/jeranaias/infinipedia-tui/internal/words"
)

// focusArea tracks which surface receives key input.
type focusArea int

const (
	focusView focusArea = iota
	focusSearch
	focusModify
	focusRecents
)

// viewMode selects between the single-topic view and the combined
// chronological view of every cached node.
type viewMode int

const (
	modeSingle viewMode = iota
	modeCombined
)

// Surprise asks the model for one interesting topic.
type Surprise interface {
	RandomWord(ctx context.Context) (string, error)
}

// Questions fetches best-effort follow-up questions for topics.
type Questions interface {
	RelatedQuestions(ctx context.Context, topics []string) map[string]string
}

// Deps bundles the explorer's collaborators.
type Deps struct {
	State        *tree.NavigationState
	Orchestrator *engine.Orchestrator
	Surprise     Surprise
	Questions    Questions
	Picker       *words.Picker
	Tracker      *telemetry.WordTracker
	Config       *config.Config
}

// Model is the Bubble Tea model for the explorer.
type Model struct {
	theme *styles.Theme
	deps  Deps

	viewport    viewport.Model
	searchInput textinput.Model
	modifyInput textinput.Model
	spinner     spinner.Model
	keyMap      KeyMap
	renderer    *glamour.TermRenderer

	width  int
	height int
	focus  focusArea
	mode   viewMode

	// Live view state for the current epoch. Reset on every
	// generation start; folded from the orchestrator's messages.
	epoch          uint64
	loading        bool
	fromCache      bool
	cards          []tree.CardData
	art            string
	artFallback    bool
	genErr         error
	generationTime time.Duration

	questions    map[string]string
	recentsIndex int
	statusNote   string
}

// New creates the explorer model.
func New(theme *styles.Theme, deps Deps) Model {
	search := textinput.New()
	search.Prompt = "? "
	search.Placeholder = "Search any topic..."
	search.CharLimit = 256

	modify := textinput.New()
	modify.Prompt = "~ "
	modify.Placeholder = "Rewrite this entry... (e.g. explain it to a child)"
	modify.CharLimit = 512

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = theme.Spinner

	return Model{
		theme:       theme,
		deps:        deps,
		viewport:    vp,
		searchInput: search,
		modifyInput: modify,
		spinner:     sp,
		keyMap:      DefaultKeyMap(),
		renderer:    newRenderer(78),
		questions:   map[string]string{},
	}
}

func newRenderer(wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Plain text fallback when the renderer cannot initialize.
		return nil
	}
	return r
}

// Init starts the spinner and, when the tree already has a current
// node, kicks off its generation (a warm cache resolves instantly).
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	if node := m.deps.State.CurrentNode(); node != nil {
		cmds = append(cmds, m.generateCmd(node.ID))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) generateCmd(nodeID string) tea.Cmd {
	orch := m.deps.Orchestrator
	return func() tea.Msg {
		if err := orch.Generate(context.Background(), nodeID); err != nil {
			return errMsg{Err: err}
		}
		return nil
	}
}

func (m Model) modifyCmd(nodeID, instruction string) tea.Cmd {
	orch := m.deps.Orchestrator
	return func() tea.Msg {
		if err := orch.Modify(context.Background(), nodeID, instruction); err != nil {
			return errMsg{Err: err}
		}
		return nil
	}
}

// surpriseCmd asks the model for a topic, falling back to the curated
// list when the one-shot fails.
func (m Model) surpriseCmd() tea.Cmd {
	surprise := m.deps.Surprise
	picker := m.deps.Picker
	current := m.currentTopic()
	return func() tea.Msg {
		if surprise != nil {
			if word, err := surprise.RandomWord(context.Background()); err == nil {
				return randomTopicMsg{Topic: word}
			} else {
				log.Printf("surprise topic failed, drawing from curated list: %v", err)
			}
		}
		return randomTopicMsg{Topic: picker.Pick(current)}
	}
}

// questionsCmd fetches follow-up questions for the most recent topics.
// Best effort; failures arrive as an empty map.
func (m Model) questionsCmd() tea.Cmd {
	questions := m.deps.Questions
	if questions == nil || !m.deps.Config.Generation.RelatedQuestions {
		return nil
	}
	var topics []string
	for _, node := range m.deps.State.RecentNodes(4) {
		topics = append(topics, node.Topic)
	}
	return func() tea.Msg {
		return relatedQuestionsMsg{Questions: questions.RelatedQuestions(context.Background(), topics)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case engine.GenerationStartedMsg:
		// Reset view state: clear cards, art, timing.
		m.epoch = msg.Epoch
		m.loading = true
		m.fromCache = false
		m.cards = nil
		if !msg.Modify {
			m.art = ""
			m.artFallback = false
		}
		m.genErr = nil
		m.generationTime = 0
		m.statusNote = ""
		m.refreshViewport()
		return m, m.spinner.Tick

	case engine.CachedContentMsg:
		// Epochs are monotonic: an older warm delivery lost the race
		// against a newer generation and must not clobber it. A newer
		// one supersedes the in-flight stream, so adopt its epoch.
		if msg.Epoch < m.epoch {
			return m, nil
		}
		m.epoch = msg.Epoch
		m.loading = false
		m.fromCache = true
		m.genErr = nil
		m.cards = msg.Cache.Cards
		m.art = msg.Cache.ASCIIArt
		m.generationTime = msg.Cache.GenerationTime
		m.refreshViewport()
		return m, m.questionsCmd()

	case engine.ContentEventMsg:
		if msg.Epoch != m.epoch {
			return m, nil
		}
		m.cards = engine.FoldCards(m.cards, msg.Event)
		m.refreshViewport()
		return m, nil

	case engine.ContentDoneMsg:
		if msg.Epoch != m.epoch {
			return m, nil
		}
		m.loading = false
		m.generationTime = msg.Duration
		if msg.Err != nil {
			// A half-populated display is worse than an empty one.
			m.cards = nil
			m.genErr = msg.Err
		} else {
			m.cards = engine.FinalizeCards(m.cards)
		}
		m.refreshViewport()
		return m, nil

	case engine.ArtDeltaMsg:
		if msg.Epoch != m.epoch {
			return m, nil
		}
		m.art += msg.Text
		return m, nil

	case engine.ArtDoneMsg:
		if msg.Epoch != m.epoch {
			return m, nil
		}
		m.art = msg.Art
		m.artFallback = msg.Fallback
		return m, nil

	case engine.CommitMsg:
		// The orchestrator's goroutines never touch the tree; the
		// write happens here on the event loop.
		m.deps.Orchestrator.Commit(msg)
		return m, nil

	case engine.CommittedMsg:
		m.refreshViewport()
		return m, m.questionsCmd()

	case randomTopicMsg:
		// A random pick starts a fresh root.
		id := m.deps.State.AddTopic(msg.Topic, "")
		if id == "" {
			return m, nil
		}
		return m, m.generateCmd(id)

	case relatedQuestionsMsg:
		m.questions = msg.Questions
		m.refreshViewport()
		return m, nil

	case PromptsReloadedMsg:
		m.statusNote = "prompt templates reloaded"
		return m, nil

	case errMsg:
		m.loading = false
		m.genErr = msg.Err
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Layout: header (3) + input (3) + status (1).
	contentHeight := msg.Height - 7
	if contentHeight < 1 {
		contentHeight = 1
	}
	contentWidth := msg.Width - m.artPanelWidth()
	if contentWidth < 1 {
		contentWidth = 1
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.renderer = newRenderer(contentWidth - 2)
	m.refreshViewport()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusModify:
		return m.handleModifyKey(msg)
	case focusRecents:
		return m.handleRecentsKey(msg)
	}
	return m.handleViewKey(msg)
}

func (m Model) handleViewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Search):
		m.focus = focusSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Modify):
		if m.deps.State.CurrentNode() == nil {
			return m, nil
		}
		m.focus = focusModify
		m.modifyInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Recents):
		m.focus = focusRecents
		m.recentsIndex = 0
		return m, nil

	case key.Matches(msg, m.keyMap.Random):
		topic := m.deps.Picker.Pick(m.currentTopic())
		id := m.deps.State.AddTopic(topic, "")
		if id == "" {
			return m, nil
		}
		return m, m.generateCmd(id)

	case key.Matches(msg, m.keyMap.Surprise):
		return m, m.surpriseCmd()

	case key.Matches(msg, m.keyMap.ToggleView):
		if m.mode == modeSingle {
			m.mode = modeCombined
		} else {
			m.mode = modeSingle
		}
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.Back):
		node := m.deps.State.CurrentNode()
		if node == nil || node.ParentID == "" {
			return m, nil
		}
		m.deps.State.NavigateTo(node.ParentID)
		return m, m.generateCmd(node.ParentID)

	case key.Matches(msg, m.keyMap.Clear):
		m.deps.Orchestrator.CancelInFlight()
		m.deps.State.ClearHistory()
		m.cards = nil
		m.art = ""
		m.genErr = nil
		m.questions = map[string]string{}
		m.loading = false
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.focus = focusView
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		topic := strings.TrimSpace(m.searchInput.Value())
		m.focus = focusView
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		if topic == "" {
			return m, nil
		}
		// Branch from the current node when one exists.
		parent := m.deps.State.CurrentNodeID
		id := m.deps.State.AddTopic(topic, parent)
		if id == "" {
			return m, nil
		}
		return m, m.generateCmd(id)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleModifyKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.focus = focusView
		m.modifyInput.Blur()
		m.modifyInput.SetValue("")
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		instruction := strings.TrimSpace(m.modifyInput.Value())
		m.focus = focusView
		m.modifyInput.Blur()
		m.modifyInput.SetValue("")
		node := m.deps.State.CurrentNode()
		if instruction == "" || node == nil {
			return m, nil
		}
		return m, m.modifyCmd(node.ID, instruction)
	}

	var cmd tea.Cmd
	m.modifyInput, cmd = m.modifyInput.Update(msg)
	return m, cmd
}

func (m Model) handleRecentsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	recents := m.deps.State.RecentNodes(m.recentLimit())
	switch {
	case key.Matches(msg, m.keyMap.Cancel), key.Matches(msg, m.keyMap.Recents):
		m.focus = focusView
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.recentsIndex > 0 {
			m.recentsIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.recentsIndex < len(recents)-1 {
			m.recentsIndex++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		m.focus = focusView
		if m.recentsIndex >= len(recents) {
			return m, nil
		}
		node := recents[m.recentsIndex]
		m.deps.State.NavigateTo(node.ID)
		return m, m.generateCmd(node.ID)
	}
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m Model) currentTopic() string {
	if node := m.deps.State.CurrentNode(); node != nil {
		return node.Topic
	}
	return ""
}

func (m Model) recentLimit() int {
	if m.deps.Config != nil && m.deps.Config.Generation.RecentLimit > 0 {
		return m.deps.Config.Generation.RecentLimit
	}
	return 10
}

// artPanelWidth is how many columns the art panel gets. Compact mode
// gives the whole width to the cards.
func (m Model) artPanelWidth() int {
	if m.theme.Compact {
		return 0
	}
	// The art panel takes a third of the screen, capped for sanity.
	w := m.width / 3
	if w > 46 {
		w = 46
	}
	if w < 20 {
		w = 0
	}
	return w
}
