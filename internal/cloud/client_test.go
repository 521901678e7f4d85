// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const testAPIKey = "sk-or-test-abcdefghijklmnopqrstuvwxyz0123456789"

func chatResponseJSON(content string) string {
	return `{
		"id": "test-id",
		"model": "test-model",
		"choices": [{
			"message": {"role": "assistant", "content": "` + content + `"},
			"finish_reason": "stop"
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
	}`
}

// =============================================================================
// ONE-SHOT CHAT TESTS
// =============================================================================

func TestChat_Basic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testAPIKey {
			t.Errorf("Authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponseJSON("hello back")))
	}))
	defer server.Close()

	client := NewClient(testAPIKey).WithBaseURL(server.URL)
	resp, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hello")})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got := resp.GetContent(); got != "hello back" {
		t.Errorf("GetContent() = %q, want %q", got, "hello back")
	}
}

// TestChat_SamplingOptionsReachRequest verifies configured temperature
// and max_tokens are serialized into the request body rather than the
// built-in defaults.
func TestChat_SamplingOptionsReachRequest(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(chatResponseJSON("ok")))
	}))
	defer server.Close()

	client := NewClient(testAPIKey).
		WithBaseURL(server.URL).
		WithTemperature(1.3).
		WithMaxTokens(512)
	if _, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got.Temperature != 1.3 {
		t.Errorf("request temperature = %v, want 1.3", got.Temperature)
	}
	if got.MaxTokens != 512 {
		t.Errorf("request max_tokens = %d, want 512", got.MaxTokens)
	}
}

// Out-of-range values keep the defaults.
func TestClient_SamplingOptionValidation(t *testing.T) {
	client := NewClient(testAPIKey).WithTemperature(-1).WithMaxTokens(-5)
	if client.temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want default %v", client.temperature, DefaultTemperature)
	}
	if client.maxTokens != 0 {
		t.Errorf("maxTokens = %d, want 0", client.maxTokens)
	}
}

func TestChat_NotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

// TestChat_RetriesExactlyOnce verifies the one-shot path performs one
// automatic retry and no more: a server failing twice yields an error
// after exactly two requests.
func TestChat_RetriesExactlyOnce(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "upstream exploded"}}`))
	}))
	defer server.Close()

	client := NewClient(testAPIKey).WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err == nil {
		t.Fatal("expected error after two failures")
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestChat_RetrySucceeds(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(chatResponseJSON("second try")))
	}))
	defer server.Close()

	client := NewClient(testAPIKey).WithBaseURL(server.URL)
	resp, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.GetContent() != "second try" {
		t.Errorf("GetContent() = %q", resp.GetContent())
	}
}

// Auth failures are terminal; a second attempt with the same bad key
// cannot succeed.
func TestChat_NoRetryOnAuthFailure(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer server.Close()

	client := NewClient(testAPIKey).WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestHandleErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad"}}`, ErrAuthFailed},
		{"payment required", http.StatusPaymentRequired, `{"error":{"message":"broke"}}`, ErrInsufficientCredits},
		{"not found", http.StatusNotFound, `{"error":{"message":"nope"}}`, ErrModelNotFound},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrRateLimited},
		{"unauthorized unparseable", http.StatusUnauthorized, `garbage`, ErrAuthFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handleErrorResponse(tt.status, []byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("handleErrorResponse(%d) = %v, want %v", tt.status, err, tt.wantErr)
			}
		})
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	client := NewClient(testAPIKey).WithBaseURL(server.URL)
	_, err := client.Generate(context.Background(), "say nothing")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}
