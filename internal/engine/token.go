// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import "sync/atomic"

// Token identifies one generation epoch. Every topic change mints a
// new epoch; a token stays valid only while no newer epoch has been
// minted. Cancellation is cooperative: flows check their token at
// every fragment boundary and discard output once superseded. The
// underlying network request is not aborted, only its output ignored.
type Token struct {
	id  uint64
	gen *atomic.Uint64
}

// Valid reports whether this token's epoch is still the latest.
func (t Token) Valid() bool {
	return t.gen != nil && t.gen.Load() == t.id
}

// Epoch returns the numeric epoch for message tagging.
func (t Token) Epoch() uint64 {
	return t.id
}
