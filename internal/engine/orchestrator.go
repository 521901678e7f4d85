// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jeranaias/infinipedia-tui/internal/cloud"
	"github.com/jeranaias/infinipedia-tui/internal/generate"
	"github.com/jeranaias/infinipedia-tui/internal/prompts"
	"github.com/jeranaias/infinipedia-tui/internal/storage"
	"github.com/jeranaias/infinipedia-tui/internal/telemetry"
	"github.com/jeranaias/infinipedia-tui/internal/tree"
)

// ErrNodeNotFound is returned when a flow is started for a node id the
// navigation state does not contain.
var ErrNodeNotFound = errors.New("node not found")

// ContentStreamer is the content-generation surface the orchestrator
// drives. Satisfied by *generate.ContentGenerator.
type ContentStreamer interface {
	StreamContent(ctx context.Context, topic, previousTopic string) <-chan generate.Event
	StreamModified(ctx context.Context, topic, currentContent, instruction string) <-chan generate.Event
}

// ArtStreamer is the art-generation surface. Satisfied by
// *generate.ArtGenerator.
type ArtStreamer interface {
	StreamArt(ctx context.Context, topic string) <-chan cloud.Fragment
}

// Orchestrator runs the per-topic-change control flow: cache
// short-circuit, concurrent art and content streams, epoch
// cancellation, and the write-once cache commit.
//
// Streaming goroutines never touch the tree. They emit messages
// through the sink; the event loop hands CommitMsg back to Commit,
// which performs the only mutation. That keeps every tree write on a
// single goroutine, so the write-once guard needs no locking.
type Orchestrator struct {
	content ContentStreamer
	art     ArtStreamer
	state   *tree.NavigationState
	store   *storage.StateStore
	tracker *telemetry.WordTracker
	sink    Sink

	gen atomic.Uint64
}

// NewOrchestrator wires the orchestrator. store and tracker may be nil
// in tests; commits then skip persistence and accounting.
func NewOrchestrator(content ContentStreamer, art ArtStreamer, state *tree.NavigationState, store *storage.StateStore, tracker *telemetry.WordTracker, sink Sink) *Orchestrator {
	return &Orchestrator{
		content: content,
		art:     art,
		state:   state,
		store:   store,
		tracker: tracker,
		sink:    sink,
	}
}

// newToken mints a fresh epoch, superseding every in-flight flow.
func (o *Orchestrator) newToken() Token {
	return Token{id: o.gen.Add(1), gen: &o.gen}
}

// CancelInFlight supersedes any running generation without starting a
// new one. Used when history is cleared.
func (o *Orchestrator) CancelInFlight() {
	o.gen.Add(1)
}

type contentResult struct {
	cards    []tree.CardData
	err      error
	duration time.Duration
}

type artResult struct {
	art      string
	fallback bool
}

// Generate runs the full topic-change flow for a node. A warm cache
// short-circuits with zero network calls. Returns an error only for an
// unknown node; stream failures are reported through the sink.
func (o *Orchestrator) Generate(ctx context.Context, nodeID string) error {
	token := o.newToken()

	node := o.state.Node(nodeID)
	if node == nil {
		return fmt.Errorf("generate %q: %w", nodeID, ErrNodeNotFound)
	}

	// Strict precondition: partial caches are cold.
	if node.Cache.IsWarm() {
		o.sink(CachedContentMsg{Epoch: token.Epoch(), NodeID: node.ID, Cache: *node.Cache})
		return nil
	}

	topic := node.Topic
	previous := o.state.ParentTopic(nodeID)
	o.sink(GenerationStartedMsg{Epoch: token.Epoch(), NodeID: node.ID, Topic: topic})

	start := time.Now()
	contentCh := make(chan contentResult, 1)
	artCh := make(chan artResult, 1)

	go o.runContent(token, o.content.StreamContent(ctx, topic, previous), start, contentCh)
	go o.runArt(token, topic, artCh)

	inputWords := generate.EstimateInputWords(topic, previous) +
		prompts.EstimateInputWords(prompts.KindArt, topic)
	go o.awaitCommit(token, node.ID, topic, false, inputWords, contentCh, artCh)
	return nil
}

// Modify runs the explicit content-replacement flow for a node: the
// one sanctioned path that overwrites cached cards. Art and timing are
// kept.
func (o *Orchestrator) Modify(ctx context.Context, nodeID, instruction string) error {
	token := o.newToken()

	node := o.state.Node(nodeID)
	if node == nil {
		return fmt.Errorf("modify %q: %w", nodeID, ErrNodeNotFound)
	}

	current := ""
	if node.Cache != nil {
		current = renderCardsText(node.Cache.Cards)
	}

	topic := node.Topic
	o.sink(GenerationStartedMsg{Epoch: token.Epoch(), NodeID: node.ID, Topic: topic, Modify: true})

	start := time.Now()
	contentCh := make(chan contentResult, 1)
	artCh := make(chan artResult, 1)
	// No art regeneration for a modify; satisfy the meeting point
	// immediately.
	artCh <- artResult{}

	go o.runContent(token, o.content.StreamModified(ctx, topic, current, instruction), start, contentCh)

	inputWords := prompts.EstimateInputWords(prompts.KindModify, topic, instruction, current)
	go o.awaitCommit(token, node.ID, topic, true, inputWords, contentCh, artCh)
	return nil
}

// runContent folds the event stream, forwarding each event to the
// sink. The token is checked at every fragment boundary; once
// superseded the remaining stream is drained and discarded so the
// producer can finish.
func (o *Orchestrator) runContent(token Token, events <-chan generate.Event, start time.Time, out chan<- contentResult) {
	var cards []tree.CardData
	var streamErr error

	for ev := range events {
		if !token.Valid() {
			continue
		}
		if ev.Kind == generate.KindError {
			streamErr = ev.Err
			break
		}
		cards = FoldCards(cards, ev)
		o.sink(ContentEventMsg{Epoch: token.Epoch(), Event: ev})
	}
	// Drain anything after a terminal error.
	for range events {
	}

	duration := time.Since(start)
	if token.Valid() {
		o.sink(ContentDoneMsg{Epoch: token.Epoch(), Err: streamErr, Duration: duration})
	}
	out <- contentResult{cards: cards, err: streamErr, duration: duration}
}

// runArt accumulates the art stream. Any failure downgrades silently
// to the deterministic fallback box; art errors never surface.
func (o *Orchestrator) runArt(token Token, topic string, out chan<- artResult) {
	var b strings.Builder
	fallback := false

	for frag := range o.art.StreamArt(context.Background(), topic) {
		if !token.Valid() {
			continue
		}
		if frag.Err != nil {
			log.Printf("art generation failed for %q, using fallback: %v", topic, frag.Err)
			fallback = true
			break
		}
		b.WriteString(frag.Text)
		o.sink(ArtDeltaMsg{Epoch: token.Epoch(), Text: frag.Text})
	}

	art := b.String()
	if fallback || strings.TrimSpace(art) == "" {
		art = generate.FallbackArt(topic)
		fallback = true
	}
	if token.Valid() {
		o.sink(ArtDoneMsg{Epoch: token.Epoch(), Art: art, Fallback: fallback})
	}
	out <- artResult{art: art, fallback: fallback}
}

// awaitCommit joins the two flows and, if the epoch survived and the
// content succeeded, hands a commit request to the event loop.
func (o *Orchestrator) awaitCommit(token Token, nodeID, topic string, modify bool, inputWords int, contentCh <-chan contentResult, artCh <-chan artResult) {
	content := <-contentCh
	art := <-artCh

	if !token.Valid() || content.err != nil {
		return
	}
	cards := FinalizeCards(content.cards)
	if len(cards) == 0 {
		return
	}

	o.sink(CommitMsg{
		Epoch:          token.Epoch(),
		NodeID:         nodeID,
		Topic:          topic,
		Modify:         modify,
		Cards:          cards,
		Art:            art.art,
		GenerationTime: content.duration,
		InputWords:     inputWords,
		OutputWords:    CountOutputWords(cards),
	})
}

// Commit applies a CommitMsg on the event loop. The cache is
// write-once: a normal generation refuses to overwrite a warm cache,
// even when the commit re-fires. A modify intentionally replaces cards
// while keeping art and timing. Superseded epochs are dropped here as
// the final guard.
func (o *Orchestrator) Commit(msg CommitMsg) bool {
	if msg.Epoch != o.gen.Load() {
		return false
	}
	node := o.state.Node(msg.NodeID)
	if node == nil {
		return false
	}

	words := tree.WordCounts{InputEstimate: msg.InputWords, Output: msg.OutputWords}
	if msg.Modify {
		if node.Cache != nil {
			words.InputEstimate += node.Cache.Words.InputEstimate
			words.Output += node.Cache.Words.Output
		}
		o.state.UpdateNodeContent(msg.NodeID, tree.NodeCache{Cards: msg.Cards, Words: words})
	} else {
		if node.Cache.IsWarm() {
			return false
		}
		o.state.UpdateNodeContent(msg.NodeID, tree.NodeCache{
			Cards:          msg.Cards,
			ASCIIArt:       msg.Art,
			GenerationTime: msg.GenerationTime,
			Words:          words,
		})
	}

	if o.tracker != nil {
		o.tracker.RecordGeneration(msg.Topic, msg.InputWords, msg.OutputWords, msg.GenerationTime)
	}
	if o.store != nil {
		if err := o.store.SaveNavigation(o.state); err != nil {
			log.Printf("failed to persist navigation state: %v", err)
		}
	}
	o.sink(CommittedMsg{NodeID: msg.NodeID})
	return true
}

// renderCardsText flattens cards back into markdown for the modify
// prompt.
func renderCardsText(cards []tree.CardData) string {
	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if c.Title != "" {
			b.WriteString(headingLinePrefix + c.Title + "\n")
		}
		b.WriteString(c.Content)
	}
	return b.String()
}

const headingLinePrefix = "## "
