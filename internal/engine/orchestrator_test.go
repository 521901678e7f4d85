// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeranaias/infinipedia-tui/internal/cloud"
	"github.com/jeranaias/infinipedia-tui/internal/generate"
	"github.com/jeranaias/infinipedia-tui/internal/storage"
	"github.com/jeranaias/infinipedia-tui/internal/telemetry"
	"github.com/jeranaias/infinipedia-tui/internal/tree"
)

// scriptedContent plays back per-topic event scripts. A topic with a
// gate does not emit until the gate is closed.
type scriptedContent struct {
	scripts map[string][]generate.Event
	gates   map[string]chan struct{}

	streamCalls int
	modifyCalls int
	lastModify  string
}

func (s *scriptedContent) play(topic string) <-chan generate.Event {
	events := s.scripts[topic]
	gate := s.gates[topic]
	out := make(chan generate.Event, len(events)+1)
	go func() {
		defer close(out)
		if gate != nil {
			<-gate
		}
		for _, ev := range events {
			out <- ev
		}
	}()
	return out
}

func (s *scriptedContent) StreamContent(ctx context.Context, topic, previousTopic string) <-chan generate.Event {
	s.streamCalls++
	return s.play(topic)
}

func (s *scriptedContent) StreamModified(ctx context.Context, topic, currentContent, instruction string) <-chan generate.Event {
	s.modifyCalls++
	s.lastModify = instruction
	return s.play(topic)
}

// scriptedArt plays back one art script for every topic.
type scriptedArt struct {
	fragments   []cloud.Fragment
	streamCalls int
}

func (s *scriptedArt) StreamArt(ctx context.Context, topic string) <-chan cloud.Fragment {
	s.streamCalls++
	out := make(chan cloud.Fragment, len(s.fragments)+1)
	for _, frag := range s.fragments {
		out <- frag
	}
	close(out)
	return out
}

// recordingSink collects every message on a channel.
type recordingSink struct {
	msgs chan any
}

func newRecordingSink() *recordingSink {
	return &recordingSink{msgs: make(chan any, 256)}
}

func (r *recordingSink) send(msg any) {
	r.msgs <- msg
}

// waitFor pulls messages until one matches, failing the test on
// timeout. Non-matching messages are discarded.
func waitFor[T any](t *testing.T, sink *recordingSink) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-sink.msgs:
			if m, ok := msg.(T); ok {
				return m
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func contentScript(text string) []generate.Event {
	return []generate.Event{
		{Kind: generate.KindContentDelta, Text: text + "\n"},
		{Kind: generate.KindSeparator},
		{Kind: generate.KindTitle, Text: "History"},
		{Kind: generate.KindContentDelta, Text: "details about " + text + "\n"},
	}
}

func newTestOrchestrator(t *testing.T, content *scriptedContent, art *scriptedArt) (*Orchestrator, *tree.NavigationState, *recordingSink, *telemetry.WordTracker) {
	t.Helper()
	state := tree.NewNavigationState()
	store := storage.NewStateStore(storage.NewMemoryAdapter())
	tracker, err := telemetry.NewWordTracker(store)
	if err != nil {
		t.Fatalf("NewWordTracker: %v", err)
	}
	sink := newRecordingSink()
	return NewOrchestrator(content, art, state, store, tracker, sink.send), state, sink, tracker
}

func TestGenerate_CommitsOnce(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": contentScript("hypertext"),
	}}
	art := &scriptedArt{fragments: []cloud.Fragment{{Text: "<art>\n"}}}
	orch, state, sink, tracker := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	if err := orch.Generate(context.Background(), nodeID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	started := waitFor[GenerationStartedMsg](t, sink)
	if started.Topic != "Hypertext" || started.Modify {
		t.Errorf("started = %+v", started)
	}

	commit := waitFor[CommitMsg](t, sink)
	if !orch.Commit(commit) {
		t.Fatal("Commit refused a live epoch")
	}
	waitFor[CommittedMsg](t, sink)

	node := state.Node(nodeID)
	if !node.Cache.IsWarm() {
		t.Fatal("cache not warm after commit")
	}
	if len(node.Cache.Cards) != 2 {
		t.Errorf("got %d cards: %+v", len(node.Cache.Cards), node.Cache.Cards)
	}
	if node.Cache.Cards[1].Title != "History" {
		t.Errorf("second card title = %q", node.Cache.Cards[1].Title)
	}
	if node.Cache.ASCIIArt != "<art>\n" {
		t.Errorf("art = %q", node.Cache.ASCIIArt)
	}
	if node.Cache.Words.Output != commit.OutputWords || node.Cache.Words.Output == 0 {
		t.Errorf("output words = %d", node.Cache.Words.Output)
	}

	// Re-firing the same commit must not double-write.
	if orch.Commit(commit) {
		t.Error("duplicate commit was accepted")
	}
	if got := tracker.Current().Generations; got != 1 {
		t.Errorf("tracker generations = %d, want 1", got)
	}
}

func TestGenerate_WarmCacheShortCircuits(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{}}
	art := &scriptedArt{}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	cached := tree.NodeCache{
		Cards:    []tree.CardData{{Content: "cached lead"}},
		ASCIIArt: "cached art",
	}
	state.UpdateNodeContent(nodeID, cached)

	if err := orch.Generate(context.Background(), nodeID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	msg := waitFor[CachedContentMsg](t, sink)
	if msg.Cache.Cards[0].Content != "cached lead" || msg.Cache.ASCIIArt != "cached art" {
		t.Errorf("cached msg = %+v", msg)
	}
	if msg.Epoch == 0 {
		t.Error("warm delivery missing its epoch")
	}
	if content.streamCalls != 0 || art.streamCalls != 0 {
		t.Errorf("warm cache issued network calls: content=%d art=%d", content.streamCalls, art.streamCalls)
	}
}

func TestGenerate_PartialCacheIsCold(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": contentScript("hypertext"),
	}}
	art := &scriptedArt{fragments: []cloud.Fragment{{Text: "art"}}}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	// Art but no cards: cold.
	state.UpdateNodeContent(nodeID, tree.NodeCache{ASCIIArt: "partial art"})

	if err := orch.Generate(context.Background(), nodeID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	waitFor[CommitMsg](t, sink)
	if content.streamCalls != 1 {
		t.Errorf("streamCalls = %d, want 1", content.streamCalls)
	}
}

func TestGenerate_ContentErrorNoCommit(t *testing.T) {
	streamErr := errors.New("stream broke")
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": {
			{Kind: generate.KindContentDelta, Text: "partial"},
			{Kind: generate.KindError, Err: streamErr},
		},
	}}
	art := &scriptedArt{fragments: []cloud.Fragment{{Text: "art"}}}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	if err := orch.Generate(context.Background(), nodeID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	done := waitFor[ContentDoneMsg](t, sink)
	if !errors.Is(done.Err, streamErr) {
		t.Errorf("ContentDoneMsg.Err = %v, want %v", done.Err, streamErr)
	}

	// No commit should ever arrive; give the coordinator a moment.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case msg := <-sink.msgs:
			if _, ok := msg.(CommitMsg); ok {
				t.Fatal("content error still produced a commit")
			}
			continue
		default:
		}
		break
	}
	if state.Node(nodeID).Cache != nil {
		t.Error("failed generation wrote to cache")
	}
}

func TestGenerate_ArtFailureUsesFallback(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": contentScript("hypertext"),
	}}
	art := &scriptedArt{fragments: []cloud.Fragment{{Err: errors.New("no art")}}}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	if err := orch.Generate(context.Background(), nodeID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	artDone := waitFor[ArtDoneMsg](t, sink)
	if !artDone.Fallback {
		t.Error("art failure not marked as fallback")
	}
	if artDone.Art != generate.FallbackArt("Hypertext") {
		t.Errorf("fallback art = %q", artDone.Art)
	}

	commit := waitFor[CommitMsg](t, sink)
	orch.Commit(commit)
	if state.Node(nodeID).Cache.ASCIIArt != generate.FallbackArt("Hypertext") {
		t.Error("fallback art not committed")
	}
}

func TestGenerate_SupersededEpochIsIsolated(t *testing.T) {
	gateA := make(chan struct{})
	content := &scriptedContent{
		scripts: map[string][]generate.Event{
			"TopicA": contentScript("A"),
			"TopicB": contentScript("B"),
		},
		gates: map[string]chan struct{}{"TopicA": gateA},
	}
	art := &scriptedArt{fragments: []cloud.Fragment{{Text: "art"}}}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeA := state.AddTopic("TopicA", "")
	if err := orch.Generate(context.Background(), nodeA); err != nil {
		t.Fatalf("Generate A: %v", err)
	}
	startedA := waitFor[GenerationStartedMsg](t, sink)

	// Topic changes before A emits anything; B supersedes A.
	nodeB := state.AddTopic("TopicB", nodeA)
	if err := orch.Generate(context.Background(), nodeB); err != nil {
		t.Fatalf("Generate B: %v", err)
	}
	startedB := waitFor[GenerationStartedMsg](t, sink)
	if startedB.Epoch <= startedA.Epoch {
		t.Fatalf("epochs not monotonic: A=%d B=%d", startedA.Epoch, startedB.Epoch)
	}

	// Now let A's stale stream flow.
	close(gateA)

	commitB := waitFor[CommitMsg](t, sink)
	if commitB.Epoch != startedB.Epoch || commitB.NodeID != nodeB {
		t.Fatalf("commit = %+v, want epoch %d node %s", commitB, startedB.Epoch, nodeB)
	}
	orch.Commit(commitB)
	waitFor[CommittedMsg](t, sink)

	// Drain everything delivered; no stale epoch-A stream output may
	// have reached the sink.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case msg := <-sink.msgs:
			switch m := msg.(type) {
			case ContentEventMsg:
				if m.Epoch == startedA.Epoch {
					t.Errorf("stale content event leaked: %+v", m)
				}
			case CommitMsg:
				if m.Epoch == startedA.Epoch {
					t.Errorf("stale commit leaked: %+v", m)
				}
			}
			continue
		default:
		}
		break
	}

	if state.Node(nodeA).Cache != nil {
		t.Error("superseded generation poisoned node A's cache")
	}
	cacheB := state.Node(nodeB).Cache
	if !cacheB.IsWarm() {
		t.Fatal("node B cache not warm")
	}
	if cacheB.Cards[0].Content != "B" {
		t.Errorf("node B lead card = %q", cacheB.Cards[0].Content)
	}
}

func TestGenerate_StaleCommitRejected(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": contentScript("hypertext"),
	}}
	art := &scriptedArt{fragments: []cloud.Fragment{{Text: "art"}}}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	if err := orch.Generate(context.Background(), nodeID); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	commit := waitFor[CommitMsg](t, sink)

	orch.CancelInFlight()
	if orch.Commit(commit) {
		t.Error("stale commit was accepted after supersession")
	}
	if state.Node(nodeID).Cache != nil {
		t.Error("stale commit wrote to cache")
	}
}

func TestModify_ReplacesCardsKeepsArtAndTiming(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": {
			{Kind: generate.KindContentDelta, Text: "rewritten lead\n"},
		},
	}}
	art := &scriptedArt{}
	orch, state, sink, _ := newTestOrchestrator(t, content, art)

	nodeID := state.AddTopic("Hypertext", "")
	state.UpdateNodeContent(nodeID, tree.NodeCache{
		Cards:          []tree.CardData{{Content: "original lead"}},
		ASCIIArt:       "original art",
		GenerationTime: 7 * time.Second,
		Words:          tree.WordCounts{InputEstimate: 50, Output: 100},
	})

	if err := orch.Modify(context.Background(), nodeID, "make it shorter"); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if content.lastModify != "make it shorter" {
		t.Errorf("instruction = %q", content.lastModify)
	}

	commit := waitFor[CommitMsg](t, sink)
	if !commit.Modify {
		t.Error("commit not marked as modify")
	}
	if !orch.Commit(commit) {
		t.Fatal("modify commit refused")
	}

	cache := state.Node(nodeID).Cache
	if cache.Cards[0].Content != "rewritten lead" {
		t.Errorf("cards not replaced: %+v", cache.Cards)
	}
	if cache.ASCIIArt != "original art" {
		t.Errorf("art not kept: %q", cache.ASCIIArt)
	}
	if cache.GenerationTime != 7*time.Second {
		t.Errorf("generation time not kept: %v", cache.GenerationTime)
	}
	if cache.Words.Output != 100+commit.OutputWords {
		t.Errorf("words not cumulative: %+v", cache.Words)
	}
	if art.streamCalls != 0 {
		t.Error("modify regenerated art")
	}
}

func TestModify_AllowedOnWarmCache(t *testing.T) {
	content := &scriptedContent{scripts: map[string][]generate.Event{
		"Hypertext": {{Kind: generate.KindContentDelta, Text: "new"}},
	}}
	orch, state, sink, _ := newTestOrchestrator(t, content, &scriptedArt{})

	nodeID := state.AddTopic("Hypertext", "")
	state.UpdateNodeContent(nodeID, tree.NodeCache{
		Cards:    []tree.CardData{{Content: "old"}},
		ASCIIArt: "art",
	})

	if err := orch.Modify(context.Background(), nodeID, "rewrite"); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	commit := waitFor[CommitMsg](t, sink)
	if !orch.Commit(commit) {
		t.Error("modify must be allowed to overwrite a warm cache")
	}
	if got := state.Node(nodeID).Cache.Cards[0].Content; got != "new" {
		t.Errorf("card content = %q, want new", got)
	}
}

func TestGenerate_UnknownNode(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(t, &scriptedContent{}, &scriptedArt{})
	if err := orch.Generate(context.Background(), "missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Generate on unknown node: err = %v, want ErrNodeNotFound", err)
	}
	if err := orch.Modify(context.Background(), "missing", "x"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Modify on unknown node: err = %v, want ErrNodeNotFound", err)
	}
}
