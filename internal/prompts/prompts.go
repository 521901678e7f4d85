// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompts owns the prompt templates for every generation kind,
// their persisted user customizations, and the heuristic input-word
// estimates used by the session accounting.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jeranaias/infinipedia-tui/internal/util"
)

// Template placeholders. Substituted literally; no template engine is
// involved, so user-edited templates cannot fail to parse.
const (
	PlaceholderTopic       = "{{topic}}"
	PlaceholderPrevious    = "{{previous}}"
	PlaceholderInstruction = "{{instruction}}"
	PlaceholderContent     = "{{content}}"
	PlaceholderWords       = "{{words}}"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the user-customizable prompt templates. Persisted as
// its own JSON document so edits survive sessions and can be made with
// a plain text editor.
type Settings struct {
	FreshTopic       string `json:"fresh_topic"`
	Continuation     string `json:"continuation"`
	Modify           string `json:"modify"`
	Art              string `json:"art"`
	RandomWord       string `json:"random_word"`
	RelatedQuestions string `json:"related_questions"`
}

// DefaultSettings returns the built-in templates.
func DefaultSettings() Settings {
	return Settings{
		FreshTopic: "Write an encyclopedia entry about " + PlaceholderTopic + ". " +
			"Structure it as several thematically distinct sections. Start each new section " +
			"with a heading line beginning with '## ' followed by the section title. " +
			"The first section is an untitled lead paragraph with no heading. " +
			"Use plain markdown prose. Do not wrap the output in code fences.",

		Continuation: "The reader was exploring " + PlaceholderPrevious + " and clicked " +
			"through to " + PlaceholderTopic + ". Write an encyclopedia entry about " +
			PlaceholderTopic + " that acknowledges this path where relevant. " +
			"Structure it as several thematically distinct sections. Start each new section " +
			"with a heading line beginning with '## ' followed by the section title. " +
			"The first section is an untitled lead paragraph with no heading. " +
			"Use plain markdown prose. Do not wrap the output in code fences.",

		Modify: "Here is an encyclopedia entry about " + PlaceholderTopic + ":\n\n" +
			PlaceholderContent + "\n\nRewrite it according to this instruction: " +
			PlaceholderInstruction + "\nKeep the same section structure: headings on " +
			"lines beginning with '## ', untitled lead section first. " +
			"Do not wrap the output in code fences.",

		Art: "Draw a piece of ASCII art representing " + PlaceholderTopic + ". " +
			"At most 16 lines tall and 40 columns wide. Output only the art itself, " +
			"no explanation, no code fences.",

		RandomWord: "Reply with a single interesting encyclopedia topic as a bare word " +
			"or short phrase. Respond as JSON: {\"word\": \"...\"}. No other text.",

		RelatedQuestions: "For each of these topics: " + PlaceholderWords + ", write one " +
			"short curiosity-sparking follow-up question. Respond as JSON mapping each " +
			"topic to its question: {\"questions\": {\"topic\": \"question\", ...}}. " +
			"No other text.",
	}
}

// FillDefaults replaces any empty template with its built-in default,
// so a partially edited settings document stays usable.
func (s *Settings) FillDefaults() {
	defaults := DefaultSettings()
	if s.FreshTopic == "" {
		s.FreshTopic = defaults.FreshTopic
	}
	if s.Continuation == "" {
		s.Continuation = defaults.Continuation
	}
	if s.Modify == "" {
		s.Modify = defaults.Modify
	}
	if s.Art == "" {
		s.Art = defaults.Art
	}
	if s.RandomWord == "" {
		s.RandomWord = defaults.RandomWord
	}
	if s.RelatedQuestions == "" {
		s.RelatedQuestions = defaults.RelatedQuestions
	}
}

// =============================================================================
// PROMPT CONSTRUCTION
// =============================================================================

// FreshTopicPrompt builds the content prompt for a topic with no
// exploration context.
func (s *Settings) FreshTopicPrompt(topic string) string {
	return strings.ReplaceAll(s.FreshTopic, PlaceholderTopic, topic)
}

// ContinuationPrompt builds the content prompt for a topic branched
// from a previous one.
func (s *Settings) ContinuationPrompt(topic, previousTopic string) string {
	out := strings.ReplaceAll(s.Continuation, PlaceholderTopic, topic)
	return strings.ReplaceAll(out, PlaceholderPrevious, previousTopic)
}

// ContentPrompt chooses between the fresh and continuation shapes
// based on whether a previous topic exists.
func (s *Settings) ContentPrompt(topic, previousTopic string) string {
	if strings.TrimSpace(previousTopic) == "" {
		return s.FreshTopicPrompt(topic)
	}
	return s.ContinuationPrompt(topic, previousTopic)
}

// ModifyPrompt builds the one-shot content-replacement prompt.
func (s *Settings) ModifyPrompt(topic, currentContent, instruction string) string {
	out := strings.ReplaceAll(s.Modify, PlaceholderTopic, topic)
	out = strings.ReplaceAll(out, PlaceholderContent, currentContent)
	return strings.ReplaceAll(out, PlaceholderInstruction, instruction)
}

// ArtPrompt builds the ASCII-art prompt.
func (s *Settings) ArtPrompt(topic string) string {
	return strings.ReplaceAll(s.Art, PlaceholderTopic, topic)
}

// RandomWordPrompt builds the one-shot random-topic prompt.
func (s *Settings) RandomWordPrompt() string {
	return s.RandomWord
}

// RelatedQuestionsPrompt builds the batch follow-up-question prompt.
func (s *Settings) RelatedQuestionsPrompt(topics []string) string {
	return strings.ReplaceAll(s.RelatedQuestions, PlaceholderWords, strings.Join(topics, ", "))
}

// =============================================================================
// INPUT WORD ESTIMATES
// =============================================================================

// Kind identifies a prompt shape for input-word estimation.
type Kind int

const (
	KindFreshTopic Kind = iota
	KindContinuation
	KindModify
	KindArt
	KindRandomWord
	KindRelatedQuestions
)

// baseInputWords are fixed per-template constants. These are
// deliberately heuristic: the session accounting never measures prompt
// sizes, only estimates them, while output words are counted exactly.
var baseInputWords = map[Kind]int{
	KindFreshTopic:       55,
	KindContinuation:     75,
	KindModify:           45,
	KindArt:              30,
	KindRandomWord:       20,
	KindRelatedQuestions: 35,
}

// EstimateInputWords returns the heuristic input-word estimate for one
// request: the template's constant plus the exact word count of the
// variable parts.
func EstimateInputWords(kind Kind, variableParts ...string) int {
	total := baseInputWords[kind]
	for _, part := range variableParts {
		total += util.CountWords(part)
	}
	return total
}

// String implements fmt.Stringer for logging.
func (k Kind) String() string {
	switch k {
	case KindFreshTopic:
		return "fresh_topic"
	case KindContinuation:
		return "continuation"
	case KindModify:
		return "modify"
	case KindArt:
		return "art"
	case KindRandomWord:
		return "random_word"
	case KindRelatedQuestions:
		return "related_questions"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
