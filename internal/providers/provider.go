// internal/providers/provider.go

// Package providers defines the boundary to the hosted completion service.
// It provides a common abstraction for sending chat requests so that
// experiment runs can be exercised against a fake service in tests.
package providers

import (
	"context"
	"time"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionRequest encapsulates one synchronous completion call.
type CompletionRequest struct {
	Model       string
	System      string
	History     []ChatMessage
	Temperature float64
	MaxTokens   int
	// Seed is forwarded for reproducibility where the backing model supports it.
	Seed int
	// JSONMode requests a structured-output hint (response_format: json_object).
	JSONMode bool
}

// CompletionMetadata carries usage accounting for a completed call.
type CompletionMetadata struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Duration         time.Duration
}

// CompletionProvider is implemented by anything that can answer one prompt at
// a time. Calls are strictly sequential; implementations do not need to be
// safe for concurrent use.
type CompletionProvider interface {
	// Complete issues a single chat completion and returns the response text.
	Complete(ctx context.Context, req CompletionRequest) (string, CompletionMetadata, error)
	// Close cleans up any resources used by the provider.
	Close() error
}
