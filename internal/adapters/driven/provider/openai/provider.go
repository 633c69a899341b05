// Package openai provides an inference provider adapter for OpenAI-compatible
// chat completion APIs, serving the remote inference path.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the OpenAI provider.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Change this for OpenAI-compatible endpoints.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the per-call timeout (default: 60s).
	Timeout time.Duration
}

// Provider simplifies text using an OpenAI-compatible chat completion API.
type Provider struct {
	client      *http.Client
	apiKey      string
	baseURL     string
	model       string
	timeout     time.Duration
	promptStore driven.PromptStore
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is a single chat message.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMsg `json:"message"`
	} `json:"choices"`
}

// New creates a new OpenAI provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Simplify rewrites the request text in easy language.
// Failures are classified as *domain.ProviderError; no retries happen here.
func (p *Provider) Simplify(ctx context.Context, req domain.InferenceRequest) (domain.InferenceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reqBody := chatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: p.systemPrompt(req)},
			{Role: "user", Content: req.Text},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderRejected,
			fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderRejected,
			fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), classifyTransportError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), classifyStatus(resp.StatusCode),
			fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body)))
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderUnavailable,
			fmt.Errorf("decode response: %w", err))
	}
	if len(chatResp.Choices) == 0 {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderRejected,
			errors.New("no choices in response"))
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderRejected,
			errors.New("empty completion"))
	}

	return domain.InferenceResult{
		ChunkID:  req.ChunkID,
		Provider: p.Name(),
		Text:     text,
		Latency:  time.Since(start),
	}, nil
}

// Name returns the provider identity.
func (p *Provider) Name() string {
	return "openai/" + p.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the provider uses built-in default prompts.
func (p *Provider) SetPromptStore(store driven.PromptStore) {
	p.promptStore = store
}

// systemPrompt resolves the system message for a request. Stored prompts
// take the source text placeholder; for the chat API the text travels in
// the user message instead, so the placeholder is stripped.
func (p *Provider) systemPrompt(req domain.InferenceRequest) string {
	if p.promptStore != nil {
		name := driven.PromptName(req.Level, req.TargetLang, req.Tier)
		if tmpl, err := p.promptStore.Load(name); err == nil && tmpl != "" {
			return strings.TrimSpace(strings.ReplaceAll(tmpl, "%s", ""))
		}
	}
	return defaultSystemPrompt(req.Level, req.TargetLang, req.Tier)
}

// Ping validates the service is reachable by checking the /models endpoint.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// classifyTransportError maps a transport-level error to a provider failure
// kind: deadline and timeout errors are ProviderTimeout, everything else is
// ProviderUnavailable.
func classifyTransportError(err error) domain.ProviderErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ProviderTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ProviderTimeout
	}
	return domain.ProviderUnavailable
}

// classifyStatus maps an HTTP status to a provider failure kind.
// 4xx responses are rejections; everything else is unavailability.
func classifyStatus(status int) domain.ProviderErrorKind {
	if status >= 400 && status < 500 {
		return domain.ProviderRejected
	}
	return domain.ProviderUnavailable
}
