// Package httpapi exposes the simplification pipeline over HTTP.
//
// Endpoints:
//   - GET  /healthz      liveness and provider reachability
//   - POST /v1/simplify  run the pipeline on submitted text
//   - POST /v1/tts       synthesise simplified text to speech
//
// Errors use a structured shape {"error": {"code", "message"}} with stable
// codes so clients can branch without parsing messages.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/core/ports/driving"
	"github.com/klartext/klartext/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr            = ":8080"
	DefaultRequestDeadline = 120 * time.Second
	DefaultRateLimit       = 60 // requests per minute
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the listen address (default: :8080).
	Addr string

	// RequestDeadline bounds one whole simplify request (default: 120s).
	RequestDeadline time.Duration

	// RateLimit is the allowed requests per minute across all callers.
	// Zero selects the default; negative disables limiting.
	RateLimit int
}

// Server handles HTTP requests against the pipeline.
type Server struct {
	simplifier driving.SimplifyService
	tts        driven.TTSService
	providers  driven.ProviderSet
	limiter    *rate.Limiter
	deadline   time.Duration
	httpServer *http.Server
}

// New creates a server. The TTS service may be nil; the /v1/tts endpoint
// then reports the provider as unavailable.
func New(cfg Config, simplifier driving.SimplifyService, tts driven.TTSService, providers driven.ProviderSet) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestDeadline == 0 {
		cfg.RequestDeadline = DefaultRequestDeadline
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60.0), cfg.RateLimit)
	}

	s := &Server{
		simplifier: simplifier,
		tts:        tts,
		providers:  providers,
		limiter:    limiter,
		deadline:   cfg.RequestDeadline,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /v1/simplify", s.handleSimplify)
	mux.HandleFunc("POST /v1/tts", s.handleTTS)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP API listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// simplifyRequest is the /v1/simplify request body.
type simplifyRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
	Level      string `json:"level"`
}

// simplifyResponse is the /v1/simplify response body.
type simplifyResponse struct {
	SimplifiedText string      `json:"simplified_text"`
	KeyPoints      []string    `json:"key_points,omitempty"`
	Warnings       []string    `json:"warnings"`
	Chunks         []chunkInfo `json:"chunks,omitempty"`
}

// chunkInfo is the per-chunk detail in a simplify response.
type chunkInfo struct {
	Ordinal      int    `json:"ordinal"`
	State        string `json:"state"`
	SafeFallback bool   `json:"safe_fallback"`
	FromCache    bool   `json:"from_cache"`
	Attempts     int    `json:"attempts,omitempty"`
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	if !s.allow() {
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "request quota exceeded")
		return
	}

	var req simplifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.deadline)
	defer cancel()

	resp, err := s.simplifier.Simplify(ctx, domain.SimplifyRequest{
		Text:       req.Text,
		SourceLang: domain.Language(req.SourceLang),
		TargetLang: domain.Language(req.TargetLang),
		Level:      domain.Level(req.Level),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := simplifyResponse{
		SimplifiedText: resp.SimplifiedText,
		KeyPoints:      resp.KeyPoints,
		Warnings:       warningsOrEmpty(resp.Warnings),
		Chunks:         make([]chunkInfo, 0, len(resp.Chunks)),
	}
	for _, chunk := range resp.Chunks {
		out.Chunks = append(out.Chunks, chunkInfo{
			Ordinal:      chunk.Ordinal,
			State:        string(chunk.State),
			SafeFallback: chunk.SafeFallback,
			FromCache:    chunk.FromCache,
			Attempts:     chunk.Attempts,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// ttsRequest is the /v1/tts request body.
type ttsRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// ttsResponse is the /v1/tts response body when the provider returns a URL.
type ttsResponse struct {
	URL    string `json:"url,omitempty"`
	Format string `json:"format"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if !s.allow() {
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "request quota exceeded")
		return
	}
	if s.tts == nil {
		writeError(w, http.StatusServiceUnavailable, codeProviderUnavailable, "tts provider not configured")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "malformed JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.deadline)
	defer cancel()

	result, err := s.tts.Synthesise(ctx, req.Text, domain.Language(req.Lang))
	if err != nil {
		writeError(w, http.StatusBadGateway, codeProviderUnavailable, "speech synthesis failed")
		logger.Error("TTS synthesis failed: %v", err)
		return
	}

	if len(result.Audio) > 0 {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
		w.Write(result.Audio) //nolint:errcheck // client gone is not actionable
		return
	}
	writeJSON(w, http.StatusOK, ttsResponse{URL: result.URL, Format: result.Format})
}

// healthzResponse is the /healthz response body.
type healthzResponse struct {
	Status    string            `json:"status"`
	Providers map[string]string `json:"providers,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthzResponse{Status: "ok"}

	if s.providers != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp.Providers = make(map[string]string)
		for _, path := range []domain.InferencePath{domain.PathLocal, domain.PathRemote} {
			p := s.providers.For(path)
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				resp.Providers[string(path)] = "unreachable"
				resp.Status = "degraded"
			} else {
				resp.Providers[string(path)] = "ok"
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

func warningsOrEmpty(warnings []string) []string {
	if warnings == nil {
		return []string{}
	}
	return warnings
}
