// Package ollama provides an inference provider adapter using Ollama,
// serving the local inference path.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Ollama provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the per-call timeout (default: 60s).
	Timeout time.Duration
}

// Provider simplifies text using a local Ollama model.
type Provider struct {
	client      *http.Client
	baseURL     string
	model       string
	timeout     time.Duration
	promptStore driven.PromptStore
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates a new Ollama provider.
func New(cfg Config) *Provider {
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
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Simplify rewrites the request text in easy language.
// Failures are classified as *domain.ProviderError; no retries happen here.
func (p *Provider) Simplify(ctx context.Context, req domain.InferenceRequest) (domain.InferenceResult, error) {
	prompt := buildPrompt(p.promptStore, req)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reqBody := generateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Options: &options{
			Temperature: 0.2,
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
		p.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderRejected,
			fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), classifyTransportError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), classifyStatus(resp.StatusCode),
			fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return domain.InferenceResult{}, domain.NewProviderError(p.Name(), domain.ProviderUnavailable,
			fmt.Errorf("decode response: %w", err))
	}

	text := strings.TrimSpace(genResp.Response)
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
	return "ollama/" + p.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the provider uses built-in default prompts.
func (p *Provider) SetPromptStore(store driven.PromptStore) {
	p.promptStore = store
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
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

// buildPrompt renders the simplification prompt for a request, preferring
// the prompt store and falling back to the built-in templates.
func buildPrompt(store driven.PromptStore, req domain.InferenceRequest) string {
	name := driven.PromptName(req.Level, req.TargetLang, req.Tier)
	if store != nil {
		if tmpl, err := store.Load(name); err == nil && tmpl != "" {
			return fmt.Sprintf(tmpl, req.Text)
		}
	}
	return fmt.Sprintf(defaultPrompt(req.Level, req.TargetLang, req.Tier), req.Text)
}
