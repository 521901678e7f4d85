// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// STREAMING: Robust SSE parsing with error handling
//
// A stream is finite, forward-only, and not restartable. Each call
// opens a new request. There is no retry on the streaming path: a
// dropped stream propagates to the caller, which decides how to
// degrade (fallback art, or a user-visible content error).

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk represents a single chunk from the streaming response.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GetContent returns the content from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true if the stream has finished.
func (c *StreamChunk) IsDone() bool {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason != ""
	}
	return false
}

// StreamCallback is the function type called for each received chunk.
type StreamCallback func(chunk StreamChunk)

// StreamError represents an error that occurred mid-stream, preserving
// any partial content received before the failure.
type StreamError struct {
	Partial string // Content received before error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type, data, and any error.
// Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Flush any buffered data before EOF
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("event:")) {
			eventType = string(bytes.TrimSpace(line[6:]))
		} else if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream performs a streaming chat completion request.
// The callback is called for each decoded chunk, in arrival order.
//
// A non-2xx response or an absent body is a hard failure for the whole
// request; no partial chunks are delivered in that case.
func (c *Client) ChatStream(ctx context.Context, messages []ChatMessage, callback StreamCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	url := c.baseURL + "/chat/completions"
	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Stream:      true,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return handleErrorResponse(resp.StatusCode, body)
	}
	if resp.Body == nil {
		return errors.New("response has no body")
	}

	return processStream(ctx, resp.Body, callback)
}

// processStream reads and decodes the SSE stream until [DONE] or EOF.
func processStream(ctx context.Context, body io.Reader, callback StreamCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// A single malformed frame must not abort the stream.
			log.Printf("skipping malformed stream frame: %v", err)
			continue
		}

		callback(chunk)

		if chunk.IsDone() {
			return nil
		}
	}
}

// ChatStreamAccumulate performs a streaming chat but returns the full
// response at the end. Useful when streaming is wanted only for
// liveness, not for progressive display.
func (c *Client) ChatStreamAccumulate(ctx context.Context, messages []ChatMessage) (string, error) {
	var accumulated strings.Builder

	err := c.ChatStream(ctx, messages, func(chunk StreamChunk) {
		accumulated.WriteString(chunk.GetContent())
	})
	if err != nil {
		return accumulated.String(), &StreamError{
			Partial: accumulated.String(),
			Err:     err,
		}
	}
	return accumulated.String(), nil
}

// =============================================================================
// CHANNEL-BASED STREAMING
// =============================================================================

// Fragment is one element of a lazy text-fragment sequence: either a
// piece of incremental text or a terminal error.
type Fragment struct {
	Text string
	Err  error
}

// StreamFragments performs a streaming chat and exposes it as a finite,
// forward-only channel of text fragments. The channel is closed when
// the stream completes; a terminal failure is delivered as the last
// element's Err. Consumers fold the sequence into state sequentially.
func (c *Client) StreamFragments(ctx context.Context, messages []ChatMessage) <-chan Fragment {
	out := make(chan Fragment, 64)

	go func() {
		defer close(out)

		err := c.ChatStream(ctx, messages, func(chunk StreamChunk) {
			text := chunk.GetContent()
			if text == "" {
				return
			}
			select {
			case out <- Fragment{Text: text}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			select {
			case out <- Fragment{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}
