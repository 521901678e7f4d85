// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"strings"

	"github.com/jeranaias/infinipedia-tui/internal/cloud"
	"github.com/jeranaias/infinipedia-tui/internal/prompts"
)

// Transport is the slice of the cloud client the generators need.
// Satisfied by *cloud.Client; tests substitute fakes.
type Transport interface {
	StreamFragments(ctx context.Context, messages []cloud.ChatMessage) <-chan cloud.Fragment
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventKind classifies one content-stream event.
type EventKind int

const (
	// KindTitle sets the title of the current card.
	KindTitle EventKind = iota
	// KindContentDelta appends text to the current card.
	KindContentDelta
	// KindSeparator closes the current card and opens a new one.
	KindSeparator
	// KindError is terminal; Err carries the stream failure.
	KindError
)

// Event is one typed content-stream event. The provider sends plain
// text with no framing; classification happens here, on heading lines.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// SettingsSource returns the live prompt settings. Indirection keeps
// hot-reloaded template edits visible to in-flight generators.
type SettingsSource func() prompts.Settings

// ContentGenerator translates (topic, context) into typed card events
// by driving the streaming transport.
type ContentGenerator struct {
	transport Transport
	settings  SettingsSource
}

// NewContentGenerator wires a generator to a transport and a live
// settings source.
func NewContentGenerator(transport Transport, settings SettingsSource) *ContentGenerator {
	return &ContentGenerator{transport: transport, settings: settings}
}

// StreamContent streams card events for a topic. previousTopic selects
// the continuation prompt shape when non-empty. The channel is closed
// after the terminal event; on failure the last event has Kind
// KindError. Streaming paths never retry.
func (g *ContentGenerator) StreamContent(ctx context.Context, topic, previousTopic string) <-chan Event {
	s := g.settings()
	prompt := s.ContentPrompt(topic, previousTopic)
	return g.stream(ctx, prompt)
}

// StreamModified streams replacement card events for an explicit
// user-initiated rewrite of existing content.
func (g *ContentGenerator) StreamModified(ctx context.Context, topic, currentContent, instruction string) <-chan Event {
	s := g.settings()
	prompt := s.ModifyPrompt(topic, currentContent, instruction)
	return g.stream(ctx, prompt)
}

func (g *ContentGenerator) stream(ctx context.Context, prompt string) <-chan Event {
	fragments := g.transport.StreamFragments(ctx, []cloud.ChatMessage{cloud.NewUserMessage(prompt)})

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		parser := newEventParser()
		for frag := range fragments {
			if frag.Err != nil {
				events <- Event{Kind: KindError, Err: frag.Err}
				return
			}
			for _, ev := range parser.Feed(frag.Text) {
				events <- ev
			}
		}
		for _, ev := range parser.Flush() {
			events <- ev
		}
	}()
	return events
}

// =============================================================================
// EVENT PARSING
// =============================================================================

// eventParser reclassifies raw streamed text into card events. The
// convention layered on the prompt templates: a line beginning with
// "## " closes the current card and titles the next one; everything
// else is a content delta. Fragments can split lines anywhere, so a
// partial line is buffered until its newline arrives.
type eventParser struct {
	partial strings.Builder
}

func newEventParser() *eventParser {
	return &eventParser{}
}

const headingPrefix = "## "

// Feed consumes one raw fragment and returns the events it completes.
func (p *eventParser) Feed(text string) []Event {
	var events []Event
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			p.partial.WriteString(text)
			break
		}
		p.partial.WriteString(text[:idx+1])
		line := p.partial.String()
		p.partial.Reset()
		events = append(events, p.classify(line)...)
		text = text[idx+1:]
	}
	return events
}

// Flush emits events for any buffered final line without a trailing
// newline.
func (p *eventParser) Flush() []Event {
	if p.partial.Len() == 0 {
		return nil
	}
	line := p.partial.String()
	p.partial.Reset()
	return p.classify(line)
}

func (p *eventParser) classify(line string) []Event {
	trimmed := strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(trimmed, headingPrefix) {
		title := strings.TrimSpace(strings.TrimPrefix(trimmed, headingPrefix))
		return []Event{
			{Kind: KindSeparator},
			{Kind: KindTitle, Text: title},
		}
	}
	return []Event{{Kind: KindContentDelta, Text: line}}
}
