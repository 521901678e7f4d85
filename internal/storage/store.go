// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists application state as JSON documents keyed by
// fixed names, rehydrated verbatim at session start.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/infinipedia-tui/internal/tree"
	"github.com/jeranaias/infinipedia-tui/internal/util"
)

// Fixed document keys.
const (
	KeyNavigation = "navigation_state"
	KeySettings   = "prompt_settings"
	KeySessions   = "word_sessions"
)

// ErrStateNotFound indicates no document exists under the requested key.
var ErrStateNotFound = errors.New("state not found")

// StoreError wraps a persistence failure with its operation and key.
type StoreError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// =============================================================================
// PERSISTENCE ADAPTER
// =============================================================================

// Adapter is the injected persistence backend: raw bytes keyed by name.
// Read returns ErrStateNotFound when no document exists for the key.
type Adapter interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// FileAdapter stores each document as <key>.json under a base directory.
type FileAdapter struct {
	BaseDir string
}

// NewFileAdapter creates a file-backed adapter rooted at baseDir,
// creating the directory if needed.
func NewFileAdapter(baseDir string) (*FileAdapter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, &StoreError{Op: "init", Key: baseDir, Err: err}
	}
	return &FileAdapter{BaseDir: baseDir}, nil
}

// DefaultDataDir returns the default state directory, ~/.infinipedia.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".infinipedia"), nil
}

func (a *FileAdapter) path(key string) string {
	return filepath.Join(a.BaseDir, key+".json")
}

// Read returns the stored bytes for key.
func (a *FileAdapter) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(a.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStateNotFound
		}
		return nil, &StoreError{Op: "read", Key: key, Err: err}
	}
	return data, nil
}

// Write persists the bytes for key.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func (a *FileAdapter) Write(key string, data []byte) error {
	if err := util.AtomicWriteFile(a.path(key), data, 0644); err != nil {
		return &StoreError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Delete removes the document for key. Deleting a missing key is not an
// error.
func (a *FileAdapter) Delete(key string) error {
	err := os.Remove(a.path(key))
	if err != nil && !os.IsNotExist(err) {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// MemoryAdapter keeps documents in a map. Used in tests.
type MemoryAdapter struct {
	docs map[string][]byte
}

// NewMemoryAdapter creates an empty in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{docs: make(map[string][]byte)}
}

// Read returns the stored bytes for key.
func (a *MemoryAdapter) Read(key string) ([]byte, error) {
	data, ok := a.docs[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return data, nil
}

// Write persists the bytes for key.
func (a *MemoryAdapter) Write(key string, data []byte) error {
	a.docs[key] = data
	return nil
}

// Delete removes the document for key.
func (a *MemoryAdapter) Delete(key string) error {
	delete(a.docs, key)
	return nil
}

// =============================================================================
// STATE STORE
// =============================================================================

// StateStore is the application's persistence surface: an explicit
// store object constructed once per session and passed by reference to
// consumers, never accessed as ambient global state.
type StateStore struct {
	adapter Adapter
}

// NewStateStore creates a store over the given adapter.
func NewStateStore(adapter Adapter) *StateStore {
	return &StateStore{adapter: adapter}
}

// LoadJSON reads the document for key into v.
func (s *StateStore) LoadJSON(key string, v any) error {
	data, err := s.adapter.Read(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &StoreError{Op: "decode", Key: key, Err: err}
	}
	return nil
}

// SaveJSON writes v as the document for key.
func (s *StateStore) SaveJSON(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StoreError{Op: "encode", Key: key, Err: err}
	}
	return s.adapter.Write(key, data)
}

// Delete removes the document for key.
func (s *StateStore) Delete(key string) error {
	return s.adapter.Delete(key)
}

// LoadNavigation rehydrates the persisted navigation tree.
// Returns ErrStateNotFound when no prior state exists; the caller seeds
// a default topic in that case.
func (s *StateStore) LoadNavigation() (*tree.NavigationState, error) {
	state := tree.NewNavigationState()
	if err := s.LoadJSON(KeyNavigation, state); err != nil {
		return nil, err
	}
	state.Normalize()
	return state, nil
}

// SaveNavigation persists the navigation tree.
func (s *StateStore) SaveNavigation(state *tree.NavigationState) error {
	return s.SaveJSON(KeyNavigation, state)
}
