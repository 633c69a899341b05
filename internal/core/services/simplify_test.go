package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klartext/klartext/internal/chunker"
	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/postprocess"
	"github.com/klartext/klartext/internal/verify"
)

// memCache is an in-test CacheStore.
type memCache struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.CacheEntry)}
}

func (c *memCache) Lookup(_ context.Context, fingerprint string) (domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[fingerprint]
	if !ok || entry.Expired(time.Now()) {
		return domain.CacheEntry{}, domain.ErrCacheMiss
	}
	return entry, nil
}

func (c *memCache) Store(_ context.Context, entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Fingerprint] = entry
	return nil
}

func (c *memCache) Purge(_ context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for fp, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed, nil
}

func (c *memCache) InvalidateBelow(_ context.Context, policyVersion int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for fp, entry := range c.entries {
		if entry.PolicyVersion < policyVersion {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed, nil
}

func (c *memCache) Close() error { return nil }

// funcProvider delegates to a rewrite function.
type funcProvider struct {
	mu      sync.Mutex
	name    string
	rewrite func(string) string
	calls   int
}

func (f *funcProvider) Simplify(_ context.Context, req domain.InferenceRequest) (domain.InferenceResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	text := req.Text
	if f.rewrite != nil {
		text = f.rewrite(text)
	}
	return domain.InferenceResult{ChunkID: req.ChunkID, Provider: f.name, Text: text}, nil
}

func (f *funcProvider) Name() string                 { return f.name }
func (f *funcProvider) Ping(_ context.Context) error { return nil }
func (f *funcProvider) Close() error                 { return nil }

func (f *funcProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestPipeline(provider driven.Provider, cache driven.CacheStore, opts ...PipelineOption) *Pipeline {
	set := &fakeProviderSet{local: provider, remote: provider}
	ctrl := NewFallbackController(set, postprocess.New(), verify.New())
	return NewPipeline(
		chunker.New(chunker.WithMaxWords(8)),
		NewRouter(0),
		ctrl,
		cache,
		opts...,
	)
}

const fourSentences = "The dog sleeps in the house. The cat sits on the mat. The bird sings in the tree. The fish swims in the pond."

func simplifyRequest(text string) domain.SimplifyRequest {
	return domain.SimplifyRequest{
		Text:       text,
		TargetLang: domain.LanguageEnglish,
		Level:      domain.LevelEasy,
	}
}

func TestSimplify_ValidationFailures(t *testing.T) {
	p := newTestPipeline(&funcProvider{name: "echo"}, newMemCache())

	tests := []struct {
		name string
		req  domain.SimplifyRequest
		want error
	}{
		{"empty", simplifyRequest(""), domain.ErrEmptyInput},
		{"whitespace only", simplifyRequest("   \n\t "), domain.ErrEmptyInput},
		{"too large", simplifyRequest(strings.Repeat("a", domain.MaxInputChars+1)), domain.ErrInputTooLarge},
		{"bad level", domain.SimplifyRequest{Text: "ok", TargetLang: domain.LanguageEnglish, Level: "extreme"}, domain.ErrInvalidInput},
		{"bad language", domain.SimplifyRequest{Text: "ok", TargetLang: "fr", Level: domain.LevelEasy}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Simplify(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSimplify_EndToEnd(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	p := newTestPipeline(provider, newMemCache())

	resp, err := p.Simplify(context.Background(), simplifyRequest(fourSentences))
	require.NoError(t, err)

	require.Len(t, resp.Chunks, 4)
	for ordinal, chunk := range resp.Chunks {
		assert.Equal(t, ordinal, chunk.Ordinal)
		assert.Equal(t, domain.StateDone, chunk.State)
		assert.False(t, chunk.SafeFallback)
		assert.Equal(t, []domain.PipelineState{
			domain.StatePending, domain.StateRouted, domain.StateInferred,
			domain.StatePostProcessed, domain.StateVerified, domain.StateDone,
		}, chunk.Trace)
	}
	assert.Contains(t, resp.SimplifiedText, "The dog sleeps")
	assert.Contains(t, resp.SimplifiedText, "The fish swims")
	assert.Equal(t, 4, provider.callCount())
}

func TestSimplify_CacheIdempotence(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	p := newTestPipeline(provider, newMemCache())

	first, err := p.Simplify(context.Background(), simplifyRequest(fourSentences))
	require.NoError(t, err)
	calls := provider.callCount()

	second, err := p.Simplify(context.Background(), simplifyRequest(fourSentences))
	require.NoError(t, err)

	assert.Equal(t, calls, provider.callCount(), "second call must be served from cache")
	assert.Equal(t, first.SimplifiedText, second.SimplifiedText)
	for _, chunk := range second.Chunks {
		assert.True(t, chunk.FromCache)
		assert.Equal(t, domain.StateDone, chunk.State)
		assert.True(t, chunk.State.Terminal())
		assert.Contains(t, chunk.Trace, domain.StateCacheHit)
	}
}

func TestSimplify_DuplicateChunksComputedOnce(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	p := newTestPipeline(provider, newMemCache())

	// Two identical sentences share a fingerprint.
	text := "The cat sits on the mat. The dog sleeps in the house. The cat sits on the mat."
	resp, err := p.Simplify(context.Background(), simplifyRequest(text))
	require.NoError(t, err)

	require.Len(t, resp.Chunks, 3)
	assert.Equal(t, 2, provider.callCount(), "identical chunks must coalesce onto one computation")
}

func TestSimplify_PolicyVersionBumpRecomputes(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	cache := newMemCache()

	p1 := newTestPipeline(provider, cache, WithPolicyVersion(1))
	_, err := p1.Simplify(context.Background(), simplifyRequest(fourSentences))
	require.NoError(t, err)
	calls := provider.callCount()

	p2 := newTestPipeline(provider, cache, WithPolicyVersion(2))
	_, err = p2.Simplify(context.Background(), simplifyRequest(fourSentences))
	require.NoError(t, err)

	assert.Equal(t, calls*2, provider.callCount(), "a policy bump must miss every old entry")
}

func TestSimplify_FailedChunkIsContained(t *testing.T) {
	// The provider corrupts the number in one chunk; that chunk falls back,
	// the rest of the document is returned normally.
	provider := &funcProvider{
		name:    "lossy",
		rewrite: func(text string) string { return strings.ReplaceAll(text, "15", "50") },
	}
	p := newTestPipeline(provider, newMemCache())

	text := "The dog sleeps in the house. You must reply within 15 days. The cat sits on the mat."
	resp, err := p.Simplify(context.Background(), simplifyRequest(text))
	require.NoError(t, err)

	require.Len(t, resp.Chunks, 3)
	assert.Equal(t, domain.StateDone, resp.Chunks[0].State)
	assert.True(t, resp.Chunks[1].SafeFallback)
	assert.Equal(t, domain.StateFailed, resp.Chunks[1].State)
	assert.Equal(t, domain.StateDone, resp.Chunks[2].State)

	assert.Contains(t, resp.SimplifiedText, "The dog sleeps")
	assert.Contains(t, resp.SimplifiedText, domain.SafeFallbackMessage(domain.LanguageEnglish))
	assert.Contains(t, resp.Warnings, "chunk_1_safe_fallback")
}

func TestSimplify_DeadlineYieldsTimeoutFallbacks(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	p := newTestPipeline(provider, newMemCache())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := p.Simplify(ctx, simplifyRequest(fourSentences))
	require.NoError(t, err)

	require.Len(t, resp.Chunks, 4)
	for _, chunk := range resp.Chunks {
		assert.True(t, chunk.SafeFallback)
	}
	assert.Contains(t, resp.Warnings, "chunk_0_timeout")
	assert.Equal(t, 0, provider.callCount())
}

func TestSimplify_KeyPointsForLongDocuments(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	p := newTestPipeline(provider, newMemCache())

	resp, err := p.Simplify(context.Background(), simplifyRequest(fourSentences))
	require.NoError(t, err)

	require.NotEmpty(t, resp.KeyPoints)
	assert.LessOrEqual(t, len(resp.KeyPoints), 5)
	assert.Equal(t, "The dog sleeps in the house.", resp.KeyPoints[0])

	short, err := p.Simplify(context.Background(), simplifyRequest("One small sentence."))
	require.NoError(t, err)
	assert.Empty(t, short.KeyPoints)
}

func TestSimplify_RestrictedContentWarning(t *testing.T) {
	provider := &funcProvider{name: "echo"}
	p := newTestPipeline(provider, newMemCache())

	resp, err := p.Simplify(context.Background(),
		simplifyRequest("You can appeal the decision in court."))
	require.NoError(t, err)

	assert.Contains(t, resp.Warnings, "contains_legal_content")
}
