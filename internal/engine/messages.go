// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"time"

	"github.com/jeranaias/infinipedia-tui/internal/generate"
	"github.com/jeranaias/infinipedia-tui/internal/tree"
)

// Sink receives the orchestrator's typed messages. In the application
// this is tea.Program.Send; tests substitute a recorder. Messages for
// a superseded epoch are never sent.
type Sink func(msg any)

// GenerationStartedMsg announces a fresh generation. The view resets
// its cards, art, and timing on receipt.
type GenerationStartedMsg struct {
	Epoch  uint64
	NodeID string
	Topic  string
	Modify bool
}

// CachedContentMsg delivers a warm node's cache without any network
// activity. It carries the epoch of the Generate call that found the
// warm cache so a delayed delivery cannot clobber a newer generation.
type CachedContentMsg struct {
	Epoch  uint64
	NodeID string
	Cache  tree.NodeCache
}

// ContentEventMsg carries one typed content event for the view fold.
type ContentEventMsg struct {
	Epoch uint64
	Event generate.Event
}

// ContentDoneMsg marks the content flow finished. Err is non-nil on
// failure; the view then clears its cards and shows the error.
type ContentDoneMsg struct {
	Epoch    uint64
	Err      error
	Duration time.Duration
}

// ArtDeltaMsg appends streamed art text to the view.
type ArtDeltaMsg struct {
	Epoch uint64
	Text  string
}

// ArtDoneMsg marks the art flow finished. Fallback is true when the
// deterministic box replaced a failed generation; art failures never
// surface as errors.
type ArtDoneMsg struct {
	Epoch    uint64
	Art      string
	Fallback bool
}

// CommitMsg asks the event loop to write a finished generation into
// the node cache. The write itself happens on the loop via
// Orchestrator.Commit, which keeps all tree mutation single-threaded.
type CommitMsg struct {
	Epoch          uint64
	NodeID         string
	Topic          string
	Modify         bool
	Cards          []tree.CardData
	Art            string
	GenerationTime time.Duration
	InputWords     int
	OutputWords    int
}

// CommittedMsg confirms a cache write.
type CommittedMsg struct {
	NodeID string
}
