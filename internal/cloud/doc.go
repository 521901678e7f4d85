// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the OpenRouter-compatible chat API client.
//
// OpenRouter exposes multiple LLM providers through a single
// chat-completions endpoint. This package implements both request
// paths the application uses: a non-streaming path for short one-shot
// completions (with a single immediate retry) and a streaming SSE path
// for progressive content and art generation (no retry).
//
// # Key Types
//
//   - Client: HTTP client for the chat completions API
//   - ChatMessage: chat message in the provider's wire format
//   - StreamChunk: one decoded SSE frame of a streaming response
//   - Fragment: one element of the channel-based fragment sequence
//
// # Usage
//
// Create a client and stream a completion:
//
//	client := cloud.NewClient(apiKey).WithModel("openrouter/auto")
//	err := client.ChatStream(ctx, msgs, func(chunk cloud.StreamChunk) {
//	    fmt.Print(chunk.GetContent())
//	})
//
// API keys are never logged, and all requests use TLS 1.2+.
package cloud
