// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the OpenRouter-compatible chat client used for
// all encyclopedia content generation.
//
// OpenRouter exposes multiple LLM providers through a single
// chat-completions API. This package implements the non-streaming
// request path (short one-shot completions) and the streaming SSE path
// (progressive card and art generation).
package cloud

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the chat API.
const (
	// DefaultBaseURL is the base URL for the OpenRouter API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is used when the config names no model.
	DefaultModel = "openrouter/auto"

	// DefaultTemperature is used when the config sets none.
	DefaultTemperature = 0.7

	// DefaultTimeout applies to non-streaming requests only. Streaming
	// requests have no timeout; a hung stream is ended by the user
	// navigating away, not by the transport.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for one-shot requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests. No timeout;
	// lifetime is controlled by the caller's context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// Error variables for common API errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrEmptyResponse indicates a completion came back with no content.
	ErrEmptyResponse = errors.New("empty response from model")
)

// APIError represents an error response from the chat API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// ChatRequest represents a request to the chat completions endpoint.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse represents a response from the chat completions endpoint.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetContent returns the content of the first choice, or empty string if none.
func (r *ChatResponse) GetContent() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	return ""
}

// apiErrorResponse represents an error response body from the API.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a client for an OpenRouter-compatible chat completions API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	siteURL     string
	siteName    string
	temperature float64
	maxTokens   int
}

// NewClient creates a new chat API client with the given API key.
//
// If the API key is empty, the client is still created but every
// request fails with ErrNotConfigured. Entry points re-check this so a
// doomed request is never attempted.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:      strings.TrimSpace(apiKey),
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		siteURL:     "https://infinipedia.local",
		siteName:    "infinipedia",
		temperature: DefaultTemperature,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithModel sets the model identifier used for all requests.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTemperature sets the sampling temperature for all requests.
// Values outside (0, 2] keep the default.
func (c *Client) WithTemperature(t float64) *Client {
	if t > 0 && t <= 2 {
		c.temperature = t
	}
	return c
}

// WithMaxTokens caps generation length. Zero means provider default.
func (c *Client) WithMaxTokens(n int) *Client {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

// WithSiteURL sets the referer URL sent with requests.
func (c *Client) WithSiteURL(url string) *Client {
	c.siteURL = url
	return c
}

// WithSiteName sets the application name sent with requests.
func (c *Client) WithSiteName(name string) *Client {
	c.siteName = name
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "infinipedia/0.1.0")

	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

// Chat performs a non-streaming chat completion request.
//
// A transient failure is retried exactly once, immediately, with no
// backoff. This path serves short one-shot asks (a random word, a
// batch of follow-up questions) where a second attempt is cheap and a
// backoff schedule would only delay the UI.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	url := c.baseURL + "/chat/completions"
	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Stream:      false,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.doRequest(ctx, url, reqBody)
	if err == nil {
		return resp, nil
	}
	if !isRetryable(err) {
		return nil, err
	}
	log.Printf("one-shot request failed, retrying once: %v", err)

	resp, retryErr := c.doRequest(ctx, url, reqBody)
	if retryErr != nil {
		return nil, fmt.Errorf("retry failed: %w", retryErr)
	}
	return resp, nil
}

// Generate performs a non-streaming completion for a single user prompt
// and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Chat(ctx, []ChatMessage{NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}
	content := resp.GetContent()
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// doRequest performs a single HTTP request to the chat completions endpoint.
func (c *Client) doRequest(ctx context.Context, requestURL string, reqBody ChatRequest) (*ChatResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &chatResp, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		e := &APIError{
			Code:    apiErr.Error.Code,
			Message: apiErr.Error.Message,
			Status:  statusCode,
		}
		switch statusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuthFailed, e.Message)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %s", ErrInsufficientCredits, e.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, e.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, e.Message)
		default:
			return e
		}
	}

	// Fallback for unparseable error responses
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			Message: string(body),
			Status:  statusCode,
		}
	}
}

// isRetryable determines if a one-shot error warrants the single retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrInsufficientCredits) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	// Network-level failures get the one retry.
	return true
}
