package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
)

type fakeSimplifier struct {
	resp domain.SimplifyResponse
	err  error
	got  domain.SimplifyRequest
}

func (f *fakeSimplifier) Simplify(_ context.Context, req domain.SimplifyRequest) (domain.SimplifyResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeTTS struct {
	result driven.TTSResult
	err    error
}

func (f *fakeTTS) Synthesise(context.Context, string, domain.Language) (driven.TTSResult, error) {
	return f.result, f.err
}
func (f *fakeTTS) Ping(context.Context) error { return nil }
func (f *fakeTTS) Close() error               { return nil }

type fakePingProvider struct {
	name string
	err  error
}

func (f *fakePingProvider) Simplify(context.Context, domain.InferenceRequest) (domain.InferenceResult, error) {
	return domain.InferenceResult{}, errors.New("not implemented")
}
func (f *fakePingProvider) Name() string               { return f.name }
func (f *fakePingProvider) Ping(context.Context) error { return f.err }
func (f *fakePingProvider) Close() error               { return nil }

type fakeProviders struct {
	local  driven.Provider
	remote driven.Provider
}

func (f *fakeProviders) For(path domain.InferencePath) driven.Provider {
	if path == domain.PathRemote {
		return f.remote
	}
	return f.local
}
func (f *fakeProviders) Close() error { return nil }

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestServer_SimplifySuccess(t *testing.T) {
	simplifier := &fakeSimplifier{
		resp: domain.SimplifyResponse{
			SimplifiedText: "Sie haben 15 Tage Zeit.",
			Warnings:       []string{"contains_legal_content"},
			Chunks: []domain.ChunkResult{
				{Ordinal: 0, State: domain.StateDone, Attempts: 1},
			},
		},
	}
	server := New(Config{}, simplifier, nil, nil)

	rec := postJSON(t, server.Handler(), "/v1/simplify",
		`{"text":"Die Frist beträgt 15 Tage.","target_lang":"de","level":"easy"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp simplifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sie haben 15 Tage Zeit.", resp.SimplifiedText)
	assert.Equal(t, []string{"contains_legal_content"}, resp.Warnings)
	require.Len(t, resp.Chunks, 1)
	assert.Equal(t, "done", resp.Chunks[0].State)

	assert.Equal(t, domain.LanguageGerman, simplifier.got.TargetLang)
	assert.Equal(t, domain.LevelEasy, simplifier.got.Level)
}

func TestServer_SimplifyMalformedBody(t *testing.T) {
	server := New(Config{}, &fakeSimplifier{}, nil, nil)

	rec := postJSON(t, server.Handler(), "/v1/simplify", `{"text": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, decodeErrorCode(t, rec))
}

func TestServer_SimplifyValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantHTTP int
	}{
		{"empty input", domain.ErrEmptyInput, codeValidation, http.StatusBadRequest},
		{"invalid input", domain.ErrInvalidInput, codeValidation, http.StatusBadRequest},
		{"too large", domain.ErrInputTooLarge, codeValidation, http.StatusBadRequest},
		{"rate limited", domain.ErrRateLimited, codeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := New(Config{}, &fakeSimplifier{err: tt.err}, nil, nil)

			rec := postJSON(t, server.Handler(), "/v1/simplify",
				`{"text":"x","target_lang":"de","level":"easy"}`)

			assert.Equal(t, tt.wantHTTP, rec.Code)
			assert.Equal(t, tt.wantCode, decodeErrorCode(t, rec))
		})
	}
}

func TestServer_SimplifyProviderErrors(t *testing.T) {
	timeout := domain.NewProviderError("ollama/llama3.2", domain.ProviderTimeout, context.DeadlineExceeded)
	server := New(Config{}, &fakeSimplifier{err: timeout}, nil, nil)

	rec := postJSON(t, server.Handler(), "/v1/simplify",
		`{"text":"x","target_lang":"de","level":"easy"}`)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, codeProviderTimeout, decodeErrorCode(t, rec))
}

func TestServer_RateLimiting(t *testing.T) {
	server := New(Config{}, &fakeSimplifier{}, nil, nil)
	server.limiter = rate.NewLimiter(0, 0) // reject everything

	rec := postJSON(t, server.Handler(), "/v1/simplify",
		`{"text":"x","target_lang":"de","level":"easy"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, codeRateLimited, decodeErrorCode(t, rec))
}

func TestServer_TTSNotConfigured(t *testing.T) {
	server := New(Config{}, &fakeSimplifier{}, nil, nil)

	rec := postJSON(t, server.Handler(), "/v1/tts", `{"text":"Hallo","lang":"de"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, codeProviderUnavailable, decodeErrorCode(t, rec))
}

func TestServer_TTSReturnsAudio(t *testing.T) {
	tts := &fakeTTS{result: driven.TTSResult{Audio: []byte("ID3audio"), Format: "mp3"}}
	server := New(Config{}, &fakeSimplifier{}, tts, nil)

	rec := postJSON(t, server.Handler(), "/v1/tts", `{"text":"Hallo","lang":"de"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ID3audio", rec.Body.String())
}

func TestServer_TTSRequiresText(t *testing.T) {
	tts := &fakeTTS{}
	server := New(Config{}, &fakeSimplifier{}, tts, nil)

	rec := postJSON(t, server.Handler(), "/v1/tts", `{"text":"","lang":"de"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, decodeErrorCode(t, rec))
}

func TestServer_Healthz(t *testing.T) {
	providers := &fakeProviders{
		local:  &fakePingProvider{name: "ollama/llama3.2"},
		remote: &fakePingProvider{name: "openai/gpt-4o-mini", err: errors.New("connection refused")},
	}
	server := New(Config{}, &fakeSimplifier{}, nil, providers)

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Providers["local"])
	assert.Equal(t, "unreachable", resp.Providers["remote"])
}
