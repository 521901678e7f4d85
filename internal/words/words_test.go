// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package words

import (
	"strings"
	"testing"
)

func TestPick_ReturnsListEntry(t *testing.T) {
	p := NewPicker()
	got := p.Pick("")
	found := false
	for _, w := range Topics {
		if w == got {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Pick returned %q, not in the list", got)
	}
}

// Drawing the current topic advances to the next list entry instead of
// repeating.
func TestPick_RerollsDuplicate(t *testing.T) {
	p := NewPickerWithSource(func(n int) int { return 0 })

	got := p.Pick(Topics[0])
	if got != Topics[1] {
		t.Errorf("Pick(%q) = %q, want next entry %q", Topics[0], got, Topics[1])
	}
}

func TestPick_RerollWrapsAround(t *testing.T) {
	last := len(Topics) - 1
	p := NewPickerWithSource(func(n int) int { return last })

	got := p.Pick(Topics[last])
	if got != Topics[0] {
		t.Errorf("Pick(%q) = %q, want wrap-around to %q", Topics[last], got, Topics[0])
	}
}

func TestPick_DuplicateCheckIsCaseInsensitive(t *testing.T) {
	p := NewPickerWithSource(func(n int) int { return 0 })

	got := p.Pick("  " + strings.ToUpper(Topics[0]) + " ")
	if got != Topics[1] {
		t.Errorf("case-insensitive duplicate not re-rolled: got %q", got)
	}
}

func TestPick_NoDuplicateKeepsDraw(t *testing.T) {
	p := NewPickerWithSource(func(n int) int { return 3 })
	if got := p.Pick("something else entirely"); got != Topics[3] {
		t.Errorf("Pick = %q, want %q", got, Topics[3])
	}
}
