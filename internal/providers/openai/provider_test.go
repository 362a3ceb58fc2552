package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/probeworks/elicit/internal/appconfig"
	"github.com/probeworks/elicit/internal/providers"
)

func newFakeServer(t *testing.T, handler func(body map[string]any) map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(body))
	}))
}

func TestCompleteForwardsSeedAndJSONMode(t *testing.T) {
	var captured map[string]any
	server := newFakeServer(t, func(body map[string]any) map[string]any {
		captured = body
		return map[string]any{
			"model": "gpt-test",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Rating: 7"}},
			},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13},
		}
	})
	defer server.Close()

	cfg := appconfig.Defaults()
	p := NewWithBaseURL("sk-test", server.URL, &cfg)
	defer p.Close()

	text, meta, err := p.Complete(context.Background(), providers.CompletionRequest{
		Model:       "gpt-test",
		System:      "system prompt",
		History:     []providers.ChatMessage{{Role: "user", Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   256,
		Seed:        42,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "Rating: 7" {
		t.Fatalf("unexpected text %q", text)
	}
	if meta.TotalTokens != 13 {
		t.Fatalf("unexpected usage: %+v", meta)
	}

	if captured["seed"] != float64(42) {
		t.Fatalf("expected seed forwarded, got %v", captured["seed"])
	}
	format, ok := captured["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured["response_format"])
	}
	messages, ok := captured["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected system + user messages, got %v", captured["messages"])
	}
	first := messages[0].(map[string]any)
	if first["role"] != "system" {
		t.Fatalf("expected leading system message, got %v", first)
	}
}

func TestCompleteSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := appconfig.Defaults()
	p := NewWithBaseURL("sk-test", server.URL, &cfg)
	defer p.Close()

	_, _, err := p.Complete(context.Background(), providers.CompletionRequest{
		Model:   "gpt-test",
		History: []providers.ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected service error")
	}
}
