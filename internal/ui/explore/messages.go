// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package explore

// randomTopicMsg delivers a topic chosen by the surprise action. The
// model one-shot can fail; the fallback draws from the curated list,
// so Topic is always usable.
type randomTopicMsg struct {
	Topic string
}

// relatedQuestionsMsg delivers best-effort follow-up questions keyed
// by topic. Failures upstream yield an empty map.
type relatedQuestionsMsg struct {
	Questions map[string]string
}

// PromptsReloadedMsg announces that the prompt templates were
// hot-reloaded from disk. Sent from the settings watcher.
type PromptsReloadedMsg struct{}

// errMsg surfaces an operation failure to the status line.
type errMsg struct {
	Err error
}
