// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/infinipedia-tui/internal/prompts"
)

// OneShot covers the short non-streaming asks: a random topic word and
// a batch of follow-up questions. These ride the transport's single
// automatic retry; the streaming paths never retry.
type OneShot struct {
	transport Transport
	settings  SettingsSource
}

// NewOneShot wires the one-shot generator to a transport and a live
// settings source.
func NewOneShot(transport Transport, settings SettingsSource) *OneShot {
	return &OneShot{transport: transport, settings: settings}
}

// RandomWord asks the model for one interesting topic. The response is
// fence-stripped and schema-validated before being trusted.
func (g *OneShot) RandomWord(ctx context.Context) (string, error) {
	s := g.settings()
	raw, err := g.transport.Generate(ctx, s.RandomWordPrompt())
	if err != nil {
		return "", err
	}

	var parsed struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), &parsed); err != nil {
		return "", fmt.Errorf("random word response is not valid JSON: %w", err)
	}
	word := strings.TrimSpace(parsed.Word)
	if word == "" {
		return "", fmt.Errorf("random word response missing word field")
	}
	return word, nil
}

// RelatedQuestions asks for one follow-up question per topic. This is
// a best-effort cosmetic feature: every failure is logged and
// swallowed, and the result is simply empty.
func (g *OneShot) RelatedQuestions(ctx context.Context, topics []string) map[string]string {
	if len(topics) == 0 {
		return map[string]string{}
	}

	s := g.settings()
	raw, err := g.transport.Generate(ctx, s.RelatedQuestionsPrompt(topics))
	if err != nil {
		log.Printf("related questions request failed: %v", err)
		return map[string]string{}
	}

	var parsed struct {
		Questions map[string]string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), &parsed); err != nil {
		log.Printf("related questions response is not valid JSON: %v", err)
		return map[string]string{}
	}
	if len(parsed.Questions) == 0 {
		log.Printf("related questions response missing questions field")
		return map[string]string{}
	}
	return parsed.Questions
}

// EstimateInputWords returns the heuristic input-word estimate for the
// content request of a topic change.
func EstimateInputWords(topic, previousTopic string) int {
	if strings.TrimSpace(previousTopic) == "" {
		return prompts.EstimateInputWords(prompts.KindFreshTopic, topic)
	}
	return prompts.EstimateInputWords(prompts.KindContinuation, topic, previousTopic)
}

// StripFences removes a wrapping markdown code fence from a whole
// response. Some models fence JSON output despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
