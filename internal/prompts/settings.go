// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompts

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/infinipedia-tui/internal/storage"
)

// Manager owns the live Settings value: loaded from the state store at
// startup, saved on edit, and hot-reloaded when the underlying JSON
// document changes on disk.
type Manager struct {
	store *storage.StateStore

	mu       sync.RWMutex
	settings Settings
}

// NewManager loads settings from the store, falling back to defaults
// when no document exists yet. A corrupt document is an error; the
// caller decides whether to start with defaults anyway.
func NewManager(store *storage.StateStore) (*Manager, error) {
	m := &Manager{store: store}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Current returns a copy of the live settings.
func (m *Manager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Update replaces the live settings and persists them.
func (m *Manager) Update(s Settings) error {
	s.FillDefaults()
	if err := m.store.SaveJSON(storage.KeySettings, s); err != nil {
		return err
	}
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	return nil
}

// reload pulls settings from the store into the live value.
func (m *Manager) reload() error {
	var s Settings
	err := m.store.LoadJSON(storage.KeySettings, &s)
	if err != nil {
		if !errors.Is(err, storage.ErrStateNotFound) {
			return err
		}
		s = DefaultSettings()
	}
	s.FillDefaults()
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	return nil
}

// =============================================================================
// HOT RELOAD
// =============================================================================

// Watcher hot-reloads prompt settings when the settings document is
// edited outside the application. Edits are debounced so a rapid save
// burst from an editor triggers a single reload.
type Watcher struct {
	manager  *Manager
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func()

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for the given manager. dataDir is the
// directory holding the settings JSON document. onReload, if non-nil,
// runs after each successful reload.
func NewWatcher(manager *Manager, dataDir string, onReload func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		manager:  manager,
		watcher:  fsWatcher,
		debounce: 500 * time.Millisecond,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Watch the directory, not the file: editors commonly replace the
	// file via rename, which drops a file-level watch.
	if err := fsWatcher.Add(dataDir); err != nil {
		cancel()
		_ = fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// Watch starts the event and debounce loops.
func (w *Watcher) Watch() {
	go w.processEvents()
	go w.processPending()
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer func() {
		// RELIABILITY: a panic in the watch loop must not take the
		// application down; settings just stop hot-reloading.
		if r := recover(); r != nil {
			log.Printf("prompts watcher: event loop panic: %v", r)
		}
	}()

	settingsFile := storage.KeySettings + ".json"
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != settingsFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("prompts watcher: %v", err)
		}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if due {
				if err := w.manager.reload(); err != nil {
					log.Printf("prompts watcher: reload failed: %v", err)
					continue
				}
				if w.onReload != nil {
					w.onReload()
				}
			}
		}
	}
}
