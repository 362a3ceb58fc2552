// internal/providers/openai/provider.go
// Package openai provides a CompletionProvider backed by the OpenAI chat
// completions API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/probeworks/elicit/internal/appconfig"
	"github.com/probeworks/elicit/internal/logging"
	"github.com/probeworks/elicit/internal/providers"
)

// Provider implements providers.CompletionProvider using the OpenAI API.
type Provider struct {
	client  *goopenai.Client
	timeout time.Duration
	debug   bool
}

// New constructs a Provider from the resolved API credential and the
// application's request timeout.
func New(apiKey string, cfg *appconfig.Config) *Provider {
	return &Provider{
		client:  goopenai.NewClient(apiKey),
		timeout: cfg.RequestTimeout(),
		debug:   cfg.Debug,
	}
}

// NewWithBaseURL constructs a Provider against a non-default endpoint. Used by
// integration tests that point the client at a local fake server.
func NewWithBaseURL(apiKey, baseURL string, cfg *appconfig.Config) *Provider {
	clientCfg := goopenai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	return &Provider{
		client:  goopenai.NewClientWithConfig(clientCfg),
		timeout: cfg.RequestTimeout(),
		debug:   cfg.Debug,
	}
}

// Complete issues one synchronous chat completion.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (string, providers.CompletionMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.History)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.History {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	apiReq := goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		apiReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		apiReq.MaxCompletionTokens = req.MaxTokens
	}
	if req.Seed > 0 {
		seed := req.Seed
		apiReq.Seed = &seed
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	if p.debug {
		logging.LogRequest("ELICIT->LLM", "", req.Model, fmt.Sprintf("messages=%d jsonMode=%t seed=%d", len(messages), req.JSONMode, req.Seed))
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	elapsed := time.Since(start)
	if err != nil {
		return "", providers.CompletionMetadata{Model: req.Model, Duration: elapsed}, fmt.Errorf("completion call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", providers.CompletionMetadata{Model: req.Model, Duration: elapsed}, fmt.Errorf("completion returned no choices")
	}

	meta := providers.CompletionMetadata{
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Duration:         elapsed,
	}
	return resp.Choices[0].Message.Content, meta, nil
}

// Close implements providers.CompletionProvider. The underlying client holds
// no long-lived connections that need teardown.
func (p *Provider) Close() error { return nil }
