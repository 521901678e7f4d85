// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/infinipedia-tui/internal/cloud"
	"github.com/jeranaias/infinipedia-tui/internal/util"
)

// ArtGenerator streams ASCII art for a topic over the same transport
// as content, with a specialized prompt and markdown fence stripping.
type ArtGenerator struct {
	transport Transport
	settings  SettingsSource
}

// NewArtGenerator wires an art generator to a transport and a live
// settings source.
func NewArtGenerator(transport Transport, settings SettingsSource) *ArtGenerator {
	return &ArtGenerator{transport: transport, settings: settings}
}

// StreamArt streams art text fragments for a topic. Fence-only lines
// are dropped as they complete. The channel is closed after the
// terminal element; on failure the last fragment carries Err. Callers
// downgrade failures to FallbackArt; art errors never surface.
func (g *ArtGenerator) StreamArt(ctx context.Context, topic string) <-chan cloud.Fragment {
	s := g.settings()
	prompt := s.ArtPrompt(topic)
	raw := g.transport.StreamFragments(ctx, []cloud.ChatMessage{cloud.NewUserMessage(prompt)})

	out := make(chan cloud.Fragment, 64)
	go func() {
		defer close(out)
		stripper := &fenceStripper{}
		for frag := range raw {
			if frag.Err != nil {
				out <- frag
				return
			}
			if text := stripper.Feed(frag.Text); text != "" {
				out <- cloud.Fragment{Text: text}
			}
		}
		if text := stripper.Flush(); text != "" {
			out <- cloud.Fragment{Text: text}
		}
	}()
	return out
}

// fenceStripper drops markdown fence lines from a character stream.
// Fragments can split lines anywhere, so lines are buffered until
// their newline arrives and fence-only lines are discarded whole.
type fenceStripper struct {
	partial strings.Builder
}

func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// Feed consumes one raw fragment and returns the kept text.
func (f *fenceStripper) Feed(text string) string {
	var out strings.Builder
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			f.partial.WriteString(text)
			break
		}
		f.partial.WriteString(text[:idx+1])
		line := f.partial.String()
		f.partial.Reset()
		if !isFenceLine(line) {
			out.WriteString(line)
		}
		text = text[idx+1:]
	}
	return out.String()
}

// Flush returns any kept text from a buffered final line.
func (f *fenceStripper) Flush() string {
	if f.partial.Len() == 0 {
		return ""
	}
	line := f.partial.String()
	f.partial.Reset()
	if isFenceLine(line) {
		return ""
	}
	return line
}

// =============================================================================
// FALLBACK ART
// =============================================================================

// fallbackMaxTopicRunes bounds the topic text inside the fallback box.
const fallbackMaxTopicRunes = 20

// FallbackArt renders a deterministic three-line box around the topic.
// Used whenever art generation fails; never errors. Topics longer than
// twenty runes are truncated with an ellipsis. UNICODE: the border is
// sized by display width so wide runes do not break alignment.
func FallbackArt(topic string) string {
	label := util.TruncateRunes(topic, fallbackMaxTopicRunes)
	width := runewidth.StringWidth(label)

	var b strings.Builder
	b.WriteString("┌")
	b.WriteString(strings.Repeat("─", width+2))
	b.WriteString("┐\n")
	b.WriteString("│ ")
	b.WriteString(label)
	b.WriteString(" │\n")
	b.WriteString("└")
	b.WriteString(strings.Repeat("─", width+2))
	b.WriteString("┘")
	return b.String()
}
