// Package http provides a text-to-speech adapter for HTTP synthesis APIs
// that accept JSON and return raw audio, such as an OpenAI-compatible
// /audio/speech endpoint.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
)

// Ensure TTSService implements the interface.
var _ driven.TTSService = (*TTSService)(nil)

// Default configuration values.
const (
	DefaultModel   = "tts-1"
	DefaultVoice   = "alloy"
	DefaultFormat  = "mp3"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the TTS service.
type Config struct {
	// BaseURL is the synthesis API base URL (required).
	BaseURL string

	// APIKey is the bearer token, optional for local services.
	APIKey string

	// Model is the synthesis model (default: tts-1).
	Model string

	// Voice is the voice name (default: alloy).
	Voice string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// TTSService synthesises speech over HTTP.
type TTSService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	voice   string
}

// speechRequest is the /audio/speech request format.
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// New creates a new TTS service.
func New(cfg Config) (*TTSService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tts: %w", domain.ErrTTSUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &TTSService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		voice:   cfg.Voice,
	}, nil
}

// Synthesise converts text to audio in the given language.
// The language is advisory: voice selection happens via configuration.
func (s *TTSService) Synthesise(ctx context.Context, text string, _ domain.Language) (driven.TTSResult, error) {
	reqBody := speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: DefaultFormat,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return driven.TTSResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/audio/speech",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return driven.TTSResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return driven.TTSResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return driven.TTSResult{}, fmt.Errorf("tts error (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return driven.TTSResult{}, fmt.Errorf("read audio: %w", err)
	}

	return driven.TTSResult{
		Audio:  audio,
		Format: DefaultFormat,
	}, nil
}

// Ping validates the provider is reachable.
func (s *TTSService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("tts: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts: ping failed: %w", err)
	}
	resp.Body.Close()
	return nil
}

// Close releases resources.
func (s *TTSService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
