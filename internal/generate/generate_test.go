// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/infinipedia-tui/internal/cloud"
	"github.com/jeranaias/infinipedia-tui/internal/prompts"
)

// fakeTransport plays back scripted fragments and records requests.
type fakeTransport struct {
	fragments   []cloud.Fragment
	response    string
	responseErr error

	streamCalls   int
	generateCalls int
	lastPrompt    string
}

func (f *fakeTransport) StreamFragments(ctx context.Context, messages []cloud.ChatMessage) <-chan cloud.Fragment {
	f.streamCalls++
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].Content
	}
	out := make(chan cloud.Fragment, len(f.fragments))
	for _, frag := range f.fragments {
		out <- frag
	}
	close(out)
	return out
}

func (f *fakeTransport) Generate(ctx context.Context, prompt string) (string, error) {
	f.generateCalls++
	f.lastPrompt = prompt
	return f.response, f.responseErr
}

func defaultSettings() prompts.Settings {
	return prompts.DefaultSettings()
}

// =============================================================================
// CONTENT EVENTS
// =============================================================================

func collectEvents(ch <-chan Event) []Event {
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestStreamContent_ClassifiesHeadings(t *testing.T) {
	transport := &fakeTransport{fragments: []cloud.Fragment{
		{Text: "Lead text.\n"},
		{Text: "## History\nIt began"},
		{Text: " long ago.\n"},
	}}
	gen := NewContentGenerator(transport, defaultSettings)

	events := collectEvents(gen.StreamContent(context.Background(), "Hypertext", ""))

	want := []Event{
		{Kind: KindContentDelta, Text: "Lead text.\n"},
		{Kind: KindSeparator},
		{Kind: KindTitle, Text: "History"},
		{Kind: KindContentDelta, Text: "It began long ago.\n"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, ev := range events {
		if ev.Kind != want[i].Kind || ev.Text != want[i].Text {
			t.Errorf("event[%d] = %+v, want %+v", i, ev, want[i])
		}
	}
}

func TestStreamContent_HeadingSplitAcrossFragments(t *testing.T) {
	transport := &fakeTransport{fragments: []cloud.Fragment{
		{Text: "## His"},
		{Text: "tory\n"},
	}}
	gen := NewContentGenerator(transport, defaultSettings)

	events := collectEvents(gen.StreamContent(context.Background(), "Hypertext", ""))

	if len(events) != 2 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if events[0].Kind != KindSeparator {
		t.Errorf("event[0].Kind = %v, want separator", events[0].Kind)
	}
	if events[1].Kind != KindTitle || events[1].Text != "History" {
		t.Errorf("event[1] = %+v, want title History", events[1])
	}
}

func TestStreamContent_FlushesFinalPartialLine(t *testing.T) {
	transport := &fakeTransport{fragments: []cloud.Fragment{
		{Text: "trailing text without newline"},
	}}
	gen := NewContentGenerator(transport, defaultSettings)

	events := collectEvents(gen.StreamContent(context.Background(), "Hypertext", ""))

	if len(events) != 1 || events[0].Kind != KindContentDelta || events[0].Text != "trailing text without newline" {
		t.Fatalf("events = %+v", events)
	}
}

func TestStreamContent_ErrorIsTerminal(t *testing.T) {
	streamErr := errors.New("stream broke")
	transport := &fakeTransport{fragments: []cloud.Fragment{
		{Text: "some text\n"},
		{Err: streamErr},
	}}
	gen := NewContentGenerator(transport, defaultSettings)

	events := collectEvents(gen.StreamContent(context.Background(), "Hypertext", ""))

	last := events[len(events)-1]
	if last.Kind != KindError || !errors.Is(last.Err, streamErr) {
		t.Errorf("last event = %+v, want terminal error", last)
	}
	if transport.streamCalls != 1 {
		t.Errorf("streamCalls = %d, streaming paths must not retry", transport.streamCalls)
	}
}

func TestStreamContent_PromptShapeFollowsPreviousTopic(t *testing.T) {
	transport := &fakeTransport{}
	gen := NewContentGenerator(transport, defaultSettings)

	collectEvents(gen.StreamContent(context.Background(), "Tardigrades", "Bioluminescence"))
	if !strings.Contains(transport.lastPrompt, "Bioluminescence") {
		t.Error("continuation prompt should mention the previous topic")
	}

	collectEvents(gen.StreamContent(context.Background(), "Tardigrades", ""))
	if strings.Contains(transport.lastPrompt, "Bioluminescence") {
		t.Error("fresh prompt should not mention a previous topic")
	}
}

func TestStreamModified_IncludesInstructionAndContent(t *testing.T) {
	transport := &fakeTransport{}
	gen := NewContentGenerator(transport, defaultSettings)

	collectEvents(gen.StreamModified(context.Background(), "Hypertext", "old body", "make it shorter"))

	for _, want := range []string{"Hypertext", "old body", "make it shorter"} {
		if !strings.Contains(transport.lastPrompt, want) {
			t.Errorf("modify prompt missing %q", want)
		}
	}
}

// =============================================================================
// ART
// =============================================================================

func collectArt(ch <-chan cloud.Fragment) (string, error) {
	var b strings.Builder
	for frag := range ch {
		if frag.Err != nil {
			return b.String(), frag.Err
		}
		b.WriteString(frag.Text)
	}
	return b.String(), nil
}

func TestStreamArt_StripsFences(t *testing.T) {
	transport := &fakeTransport{fragments: []cloud.Fragment{
		{Text: "```\n /\\_/\\\n"},
		{Text: "( o.o )\n``"},
		{Text: "`"},
	}}
	gen := NewArtGenerator(transport, defaultSettings)

	art, err := collectArt(gen.StreamArt(context.Background(), "Cats"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art != " /\\_/\\\n( o.o )\n" {
		t.Errorf("art = %q", art)
	}
}

func TestStreamArt_PropagatesError(t *testing.T) {
	streamErr := errors.New("no art today")
	transport := &fakeTransport{fragments: []cloud.Fragment{{Err: streamErr}}}
	gen := NewArtGenerator(transport, defaultSettings)

	_, err := collectArt(gen.StreamArt(context.Background(), "Cats"))
	if !errors.Is(err, streamErr) {
		t.Errorf("err = %v, want %v", err, streamErr)
	}
}

func TestFallbackArt_Hypertext(t *testing.T) {
	want := "┌───────────┐\n" +
		"│ Hypertext │\n" +
		"└───────────┘"
	if got := FallbackArt("Hypertext"); got != want {
		t.Errorf("FallbackArt(Hypertext) =\n%s\nwant:\n%s", got, want)
	}
}

func TestFallbackArt_TruncatesLongTopics(t *testing.T) {
	topic := "A Remarkably Overlong Topic Name"
	art := FallbackArt(topic)

	lines := strings.Split(art, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	wantLabel := string([]rune(topic)[:17]) + "..."
	if lines[1] != "│ "+wantLabel+" │" {
		t.Errorf("middle line = %q", lines[1])
	}
	if len([]rune(lines[0])) != len([]rune(lines[2])) {
		t.Error("top and bottom borders differ in length")
	}
}

func TestFallbackArt_ShortTopicUntruncated(t *testing.T) {
	art := FallbackArt("Ox")
	if !strings.Contains(art, "│ Ox │") {
		t.Errorf("art = %q", art)
	}
}

// =============================================================================
// ONE-SHOTS
// =============================================================================

func TestRandomWord(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     string
		wantErr  bool
	}{
		{
			name:     "plain json",
			response: `{"word": "Ouroboros"}`,
			want:     "Ouroboros",
		},
		{
			name:     "fenced json",
			response: "```json\n{\"word\": \"Tardigrades\"}\n```",
			want:     "Tardigrades",
		},
		{
			name:     "not json",
			response: "Ouroboros",
			wantErr:  true,
		},
		{
			name:     "empty word field",
			response: `{"word": "  "}`,
			wantErr:  true,
		},
		{
			name:    "transport error",
			err:     errors.New("boom"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{response: tt.response, responseErr: tt.err}
			gen := NewOneShot(transport, defaultSettings)

			got, err := gen.RandomWord(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("word = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelatedQuestions_SwallowsFailures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "transport error", err: errors.New("boom")},
		{name: "not json", response: "nope"},
		{name: "missing field", response: `{"other": 1}`},
		{name: "empty map", response: `{"questions": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{response: tt.response, responseErr: tt.err}
			gen := NewOneShot(transport, defaultSettings)

			got := gen.RelatedQuestions(context.Background(), []string{"Hypertext"})
			if got == nil || len(got) != 0 {
				t.Errorf("failures must yield an empty map, got %v", got)
			}
		})
	}
}

func TestRelatedQuestions_ParsesFencedResponse(t *testing.T) {
	transport := &fakeTransport{
		response: "```\n{\"questions\": {\"Hypertext\": \"Who coined the term?\"}}\n```",
	}
	gen := NewOneShot(transport, defaultSettings)

	got := gen.RelatedQuestions(context.Background(), []string{"Hypertext"})
	if got["Hypertext"] != "Who coined the term?" {
		t.Errorf("questions = %v", got)
	}
}

func TestRelatedQuestions_NoTopicsNoRequest(t *testing.T) {
	transport := &fakeTransport{}
	gen := NewOneShot(transport, defaultSettings)

	gen.RelatedQuestions(context.Background(), nil)
	if transport.generateCalls != 0 {
		t.Errorf("generateCalls = %d, want 0", transport.generateCalls)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"```", ""},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
