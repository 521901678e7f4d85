// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/infinipedia-tui/internal/storage"
)

// historyLimit bounds how many finished sessions are kept on disk.
const historyLimit = 50

// topGenerationsLimit bounds the per-session most-expensive list.
const topGenerationsLimit = 10

// Session accumulates word usage for one application run. Input words
// are heuristic estimates; output words are exact counts of streamed
// text. A generation is recorded only when its result is committed, so
// cancelled epochs never inflate the totals.
type Session struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`

	InputWords  int `json:"input_words"`
	OutputWords int `json:"output_words"`
	Generations int `json:"generations"`

	// TopGenerations keeps the most output-heavy generations, largest
	// first.
	TopGenerations []GenerationRecord `json:"top_generations"`
}

// GenerationRecord is the accounting entry for one completed
// generation.
type GenerationRecord struct {
	Timestamp   time.Time     `json:"timestamp"`
	Topic       string        `json:"topic"`
	InputWords  int           `json:"input_words"`
	OutputWords int           `json:"output_words"`
	Duration    time.Duration `json:"duration"`
}

// TotalWords returns input plus output for the whole session.
func (s *Session) TotalWords() int {
	return s.InputWords + s.OutputWords
}

// WordTracker owns the current session and the persisted history.
//
// The tracker is only ever driven from the UI event loop, which
// serializes all mutations; no locking is needed.
type WordTracker struct {
	store   *storage.StateStore
	current *Session
	history []Session
}

// NewWordTracker loads prior session history and opens a fresh
// session. A missing history document is not an error.
func NewWordTracker(store *storage.StateStore) (*WordTracker, error) {
	t := &WordTracker{store: store}

	var history []Session
	if err := store.LoadJSON(storage.KeySessions, &history); err != nil {
		if !errors.Is(err, storage.ErrStateNotFound) {
			return nil, err
		}
	}
	t.history = history
	t.current = newSession()
	return t, nil
}

func newSession() *Session {
	return &Session{
		ID:             uuid.NewString(),
		StartTime:      time.Now(),
		TopGenerations: make([]GenerationRecord, 0),
	}
}

// RecordGeneration adds one committed generation to the current
// session.
func (t *WordTracker) RecordGeneration(topic string, inputWords, outputWords int, duration time.Duration) {
	s := t.current
	s.InputWords += inputWords
	s.OutputWords += outputWords
	s.Generations++

	s.TopGenerations = append(s.TopGenerations, GenerationRecord{
		Timestamp:   time.Now(),
		Topic:       topic,
		InputWords:  inputWords,
		OutputWords: outputWords,
		Duration:    duration,
	})
	sort.SliceStable(s.TopGenerations, func(i, j int) bool {
		return s.TopGenerations[i].OutputWords > s.TopGenerations[j].OutputWords
	})
	if len(s.TopGenerations) > topGenerationsLimit {
		s.TopGenerations = s.TopGenerations[:topGenerationsLimit]
	}
}

// Current returns a copy of the live session.
func (t *WordTracker) Current() Session {
	s := *t.current
	s.TopGenerations = append([]GenerationRecord(nil), t.current.TopGenerations...)
	return s
}

// History returns the finished sessions, oldest first.
func (t *WordTracker) History() []Session {
	return append([]Session(nil), t.history...)
}

// LifetimeWords sums words across the history and the live session.
func (t *WordTracker) LifetimeWords() int {
	total := t.current.TotalWords()
	for _, s := range t.history {
		total += s.TotalWords()
	}
	return total
}

// Close seals the current session, appends it to the history, and
// persists the trimmed history. Sessions with no generations are
// discarded rather than saved.
func (t *WordTracker) Close() error {
	if t.current.Generations > 0 {
		t.current.EndTime = time.Now()
		t.history = append(t.history, *t.current)
		if len(t.history) > historyLimit {
			t.history = t.history[len(t.history)-historyLimit:]
		}
	}
	t.current = newSession()
	return t.store.SaveJSON(storage.KeySessions, t.history)
}
