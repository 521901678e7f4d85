// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate translates topics into model requests and typed
// result streams.
//
// # Key Types
//
//   - ContentGenerator: streams card events (title, content delta,
//     separator) parsed from the raw text stream.
//   - ArtGenerator: streams ASCII art with markdown fences stripped;
//     FallbackArt renders the deterministic box used on failure.
//   - OneShot: non-streaming asks (random word, related questions)
//     with fence stripping and schema validation.
//
// # Usage
//
//	gen := generate.NewContentGenerator(client, manager.Current)
//	for ev := range gen.StreamContent(ctx, "Hypertext", "") {
//	    ...
//	}
//
// Generators are pure translation: prompt construction in, typed
// events out. All view-state folding and cancellation policy lives in
// the engine package.
package generate
