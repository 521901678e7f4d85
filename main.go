// infinipedia TUI - an infinite encyclopedia in your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/infinipedia-tui/internal/cloud"
	"github.com/jeranaias/infinipedia-tui/internal/config"
	"github.com/jeranaias/infinipedia-tui/internal/engine"
	"github.com/jeranaias/infinipedia-tui/internal/generate"
	"github.com/jeranaias/infinipedia-tui/internal/prompts"
	"github.com/jeranaias/infinipedia-tui/internal/storage"
	"github.com/jeranaias/infinipedia-tui/internal/telemetry"
	"github.com/jeranaias/infinipedia-tui/internal/tree"
	"github.com/jeranaias/infinipedia-tui/internal/ui/explore"
	"github.com/jeranaias/infinipedia-tui/internal/ui/styles"
	"github.com/jeranaias/infinipedia-tui/internal/words"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// sendToProgram delivers orchestrator messages to the running program.
// Safe to call before the program starts; messages are then dropped.
func sendToProgram(msg any) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("infinipedia %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Global()

	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		var err error
		if dataDir, err = storage.DefaultDataDir(); err != nil {
			return fmt.Errorf("resolving data directory: %w", err)
		}
	}
	adapter, err := storage.NewFileAdapter(dataDir)
	if err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// The TUI owns stdout; everything logged goes to a file.
	closeLog := setupLogging(dataDir)
	defer closeLog()
	log.Printf("infinipedia %s starting, data dir %s", Version, dataDir)

	store := storage.NewStateStore(adapter)

	state, err := store.LoadNavigation()
	if err != nil {
		if !errors.Is(err, storage.ErrStateNotFound) {
			return fmt.Errorf("loading navigation state: %w", err)
		}
		state = tree.NewNavigationState()
	}
	if state.Len() == 0 {
		// First run: seed a root topic so the screen is never blank.
		seed := cfg.Generation.DefaultTopic
		if seed == "" {
			seed = "Hypertext"
		}
		state.AddTopic(seed, "")
	}

	promptMgr, err := prompts.NewManager(store)
	if err != nil {
		// A corrupt settings document should not block startup.
		log.Printf("prompt settings unreadable, resetting to defaults: %v", err)
		if err := store.Delete(storage.KeySettings); err != nil {
			return fmt.Errorf("resetting prompt settings: %w", err)
		}
		if promptMgr, err = prompts.NewManager(store); err != nil {
			return fmt.Errorf("loading prompt settings: %w", err)
		}
	}

	tracker, err := telemetry.NewWordTracker(store)
	if err != nil {
		return fmt.Errorf("loading session history: %w", err)
	}

	client := cloud.NewClient(cfg.API.Key).
		WithBaseURL(cfg.API.BaseURL).
		WithModel(cfg.API.Model).
		WithTemperature(cfg.API.Temperature).
		WithMaxTokens(cfg.API.MaxTokens)
	if !client.IsConfigured() {
		hint := "the config file"
		if dir, err := config.ConfigDir(); err == nil {
			hint = filepath.Join(dir, "config.toml")
		}
		fmt.Fprintln(os.Stderr, "No API key configured. Set INFINIPEDIA_API_KEY or add one to", hint)
	}

	contentGen := generate.NewContentGenerator(client, promptMgr.Current)
	artGen := generate.NewArtGenerator(client, promptMgr.Current)
	oneShot := generate.NewOneShot(client, promptMgr.Current)

	orch := engine.NewOrchestrator(contentGen, artGen, state, store, tracker, sendToProgram)

	theme := styles.NewTheme(cfg.UI.Theme, cfg.UI.CompactMode)
	explorer := explore.New(theme, explore.Deps{
		State:        state,
		Orchestrator: orch,
		Surprise:     oneShot,
		Questions:    oneShot,
		Picker:       words.NewPicker(),
		Tracker:      tracker,
		Config:       cfg,
	})

	// Hot-reload prompt templates edited outside the app.
	watcher, err := prompts.NewWatcher(promptMgr, dataDir, func() {
		sendToProgram(explore.PromptsReloadedMsg{})
	})
	if err != nil {
		log.Printf("prompt hot-reload unavailable: %v", err)
	} else {
		watcher.Watch()
		defer watcher.Close()
	}

	p := tea.NewProgram(
		appModel{explorer: explorer},
		tea.WithAltScreen(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	_, runErr := p.Run()

	// Persist on the way out regardless of how the UI ended.
	if err := store.SaveNavigation(state); err != nil {
		log.Printf("failed to save navigation state: %v", err)
	}
	if err := tracker.Close(); err != nil {
		log.Printf("failed to save session history: %v", err)
	}
	return runErr
}

// setupLogging sends the standard logger to a file under the data
// directory. The returned func closes the file.
func setupLogging(dataDir string) func() {
	f, err := os.OpenFile(filepath.Join(dataDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return func() { _ = f.Close() }
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// appModel adapts the explorer to the tea.Model interface.
type appModel struct {
	explorer explore.Model
}

func (m appModel) Init() tea.Cmd {
	return m.explorer.Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.explorer, cmd = m.explorer.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	return m.explorer.View()
}
