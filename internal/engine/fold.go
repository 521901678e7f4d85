// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"strings"

	"github.com/jeranaias/infinipedia-tui/internal/generate"
	"github.com/jeranaias/infinipedia-tui/internal/tree"
	"github.com/jeranaias/infinipedia-tui/internal/util"
)

// FoldCards applies one content event to an ordered card list and
// returns the updated list. This is the single fold used both for
// live view state and for the cache commit, so the two can never
// disagree.
//
// Rules: the first event of any kind creates a card if none exists; a
// title event titles the current card; a content delta appends to the
// current card; a separator closes the current card and opens a new
// one. A separator arriving while the current card is still empty
// reuses it, so a stream that opens with a heading does not leave an
// empty lead card behind.
func FoldCards(cards []tree.CardData, ev generate.Event) []tree.CardData {
	switch ev.Kind {
	case generate.KindSeparator:
		if n := len(cards); n > 0 && isEmptyCard(cards[n-1]) {
			return cards
		}
		return append(cards, tree.CardData{})
	case generate.KindTitle:
		cards = ensureCurrent(cards)
		cards[len(cards)-1].Title = ev.Text
		return cards
	case generate.KindContentDelta:
		cards = ensureCurrent(cards)
		cards[len(cards)-1].Content += ev.Text
		return cards
	default:
		return cards
	}
}

func ensureCurrent(cards []tree.CardData) []tree.CardData {
	if len(cards) == 0 {
		return append(cards, tree.CardData{})
	}
	return cards
}

func isEmptyCard(c tree.CardData) bool {
	return c.Title == "" && strings.TrimSpace(c.Content) == ""
}

// FinalizeCards trims trailing whitespace from card content and drops
// cards that ended up empty, such as one opened by a final separator.
func FinalizeCards(cards []tree.CardData) []tree.CardData {
	out := make([]tree.CardData, 0, len(cards))
	for _, c := range cards {
		c.Content = strings.TrimSpace(c.Content)
		if isEmptyCard(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CountOutputWords sums the exact word counts of every card's title
// and content.
func CountOutputWords(cards []tree.CardData) int {
	total := 0
	for _, c := range cards {
		total += util.CountWords(c.Title) + util.CountWords(c.Content)
	}
	return total
}
