// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package words holds the curated topic list behind the "random topic"
// action.
package words

import (
	"math/rand"
	"strings"
)

// Topics is the fixed curated word list. Order matters: the duplicate
// re-roll rule advances to the next entry, wrapping at the end.
var Topics = []string{
	"Hypertext",
	"Bioluminescence",
	"Cartography",
	"Entropy",
	"Polyphony",
	"Terraforming",
	"Cryptography",
	"Mycelium",
	"Antikythera mechanism",
	"Murmuration",
	"Palimpsest",
	"Tessellation",
	"Sonoluminescence",
	"Ziggurat",
	"Petrichor",
	"Stigmergy",
	"Caravanserai",
	"Zoetrope",
	"Isostasy",
	"Umami",
	"Scrimshaw",
	"Heliotrope",
	"Qanat",
	"Saudade",
	"Trebuchet",
	"Chiaroscuro",
	"Permafrost",
	"Astrolabe",
	"Synesthesia",
	"Ouroboros",
}

// Picker draws random topics. The integer source is injectable so
// tests can force a draw.
type Picker struct {
	intn func(n int) int
}

// NewPicker creates a picker backed by the default random source.
func NewPicker() *Picker {
	return &Picker{intn: rand.Intn}
}

// NewPickerWithSource creates a picker with a custom integer source.
func NewPickerWithSource(intn func(n int) int) *Picker {
	return &Picker{intn: intn}
}

// Pick draws a topic from the list. If the draw equals the current
// topic (case-insensitive), the next list entry is used instead,
// wrapping around at the end, so the action never repeats the topic
// already displayed.
func (p *Picker) Pick(currentTopic string) string {
	idx := p.intn(len(Topics))
	if strings.EqualFold(Topics[idx], strings.TrimSpace(currentTopic)) {
		idx = (idx + 1) % len(Topics)
	}
	return Topics[idx]
}
