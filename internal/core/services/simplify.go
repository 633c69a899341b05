package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/klartext/klartext/internal/chunker"
	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/core/ports/driving"
	"github.com/klartext/klartext/internal/logger"
	"github.com/klartext/klartext/internal/verify"
)

// Pipeline defaults.
const (
	DefaultWorkers       = 4
	DefaultPolicyVersion = 1

	// keyPointsMinChunks is the document size at which key points are
	// extracted alongside the simplified text.
	keyPointsMinChunks = 3

	// maxKeyPoints caps the extractive summary length.
	maxKeyPoints = 5
)

// Pipeline is the simplification orchestrator. It validates the request,
// chunks the document, and runs each chunk through cache lookup, routing,
// inference, post-processing, verification and fallback concurrently, then
// recombines results in original order.
//
// The worker pool bound is shared across all requests served by one
// Pipeline, protecting the outbound provider connections from unbounded
// fan-out. The singleflight group guarantees at most one in-flight
// computation per cache fingerprint.
type Pipeline struct {
	chunker  *chunker.Chunker
	router   *Router
	fallback *FallbackController
	cache    driven.CacheStore

	telemetry     driven.TelemetrySink
	group         singleflight.Group
	sem           chan struct{}
	policyVersion int
	cacheTTL      time.Duration
}

var _ driving.SimplifyService = (*Pipeline)(nil)

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithWorkers bounds concurrent chunk processing.
// Non-positive values select the default.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.sem = make(chan struct{}, n)
		}
	}
}

// WithPolicyVersion sets the prompt/verification rule version used in cache
// fingerprints. Bumping it invalidates every cached entry.
func WithPolicyVersion(v int) PipelineOption {
	return func(p *Pipeline) {
		if v > 0 {
			p.policyVersion = v
		}
	}
}

// WithCacheTTL sets the expiry applied to stored cache entries.
// Zero means entries never expire.
func WithCacheTTL(ttl time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.cacheTTL = ttl
	}
}

// WithTelemetry attaches a telemetry sink. Nil sinks drop events.
func WithTelemetry(sink driven.TelemetrySink) PipelineOption {
	return func(p *Pipeline) {
		p.telemetry = sink
	}
}

// NewPipeline wires the orchestrator from its collaborators.
func NewPipeline(ch *chunker.Chunker, router *Router, fallback *FallbackController, cache driven.CacheStore, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		chunker:       ch,
		router:        router,
		fallback:      fallback,
		cache:         cache,
		sem:           make(chan struct{}, DefaultWorkers),
		policyVersion: DefaultPolicyVersion,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PolicyVersion returns the active policy version.
func (p *Pipeline) PolicyVersion() int {
	return p.policyVersion
}

// Simplify processes one document end to end. Only whole-document
// validation failures return an error; per-chunk failures degrade to
// safe-fallback messages inside the response.
func (p *Pipeline) Simplify(ctx context.Context, req domain.SimplifyRequest) (domain.SimplifyResponse, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := req.Validate(); err != nil {
		return domain.SimplifyResponse{}, err
	}

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Text:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Level:      req.Level,
	}
	if doc.SourceLang == "" {
		if detected, ok := verify.DetectLanguage(doc.Text); ok {
			doc.SourceLang = detected
		} else {
			doc.SourceLang = doc.TargetLang
		}
	}

	chunks, docWarnings, err := p.chunker.Split(doc)
	if err != nil {
		return domain.SimplifyResponse{}, err
	}
	logger.Info("Simplifying document=%s chunks=%d level=%s target=%s",
		doc.ID, len(chunks), doc.Level, doc.TargetLang)

	results := make([]domain.ChunkResult, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk domain.Chunk) {
			defer wg.Done()
			results[i] = p.processChunk(ctx, doc, chunk)
		}(i, chunk)
	}
	wg.Wait()

	resp := Recombine(results)
	resp.Warnings = mergeWarnings(docWarnings, resp.Warnings)
	if len(chunks) >= keyPointsMinChunks {
		resp.KeyPoints = extractKeyPoints(resp.Chunks)
	}
	return resp, nil
}

// sharedChunk is the coalesced per-fingerprint computation result.
type sharedChunk struct {
	Text     string
	State    domain.PipelineState
	Trace    []domain.PipelineState
	Route    domain.Route
	Attempts int
	Warnings []string
	Safe     bool
	Cached   bool
}

func (p *Pipeline) processChunk(ctx context.Context, doc *domain.Document, chunk domain.Chunk) domain.ChunkResult {
	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return p.timeoutResult(doc, chunk)
	}
	if ctx.Err() != nil {
		return p.timeoutResult(doc, chunk)
	}

	fp := domain.Fingerprint(chunk.Text, doc.Level, doc.TargetLang, p.policyVersion)
	v, err, coalesced := p.group.Do(fp, func() (any, error) {
		return p.computeChunk(ctx, doc, chunk, fp), nil
	})
	if err != nil {
		// computeChunk never returns an error; keep the chunk alive anyway.
		return p.timeoutResult(doc, chunk)
	}

	shared := v.(sharedChunk)
	return domain.ChunkResult{
		Ordinal:      chunk.Ordinal,
		Text:         shared.Text,
		State:        shared.State,
		Trace:        shared.Trace,
		SafeFallback: shared.Safe,
		FromCache:    shared.Cached || coalesced,
		Route:        shared.Route,
		Attempts:     shared.Attempts,
		Warnings:     shared.Warnings,
	}
}

// computeChunk does the actual cache/route/infer/verify work for one
// fingerprint. Concurrent callers for the same fingerprint share one
// execution via singleflight.
func (p *Pipeline) computeChunk(ctx context.Context, doc *domain.Document, chunk domain.Chunk, fp string) sharedChunk {
	start := time.Now()
	entry, err := p.cache.Lookup(ctx, fp)
	switch {
	case err == nil:
		p.record(driven.TelemetryEvent{
			Kind: "cache_hit", DocumentID: doc.ID, ChunkID: chunk.ID,
			Outcome: "hit", Duration: time.Since(start),
		})
		logger.Debug("Cache hit chunk=%s fingerprint=%s", chunk.ID, fp[:12])
		return sharedChunk{
			Text:   entry.Text,
			State:  domain.StateDone,
			Trace:  []domain.PipelineState{domain.StatePending, domain.StateCacheHit, domain.StateDone},
			Cached: true,
		}
	case errors.Is(err, domain.ErrCacheMiss):
		p.record(driven.TelemetryEvent{
			Kind: "cache_hit", DocumentID: doc.ID, ChunkID: chunk.ID,
			Outcome: "miss", Duration: time.Since(start),
		})
	default:
		// Cache failures are never fatal: proceed as a miss.
		logger.Warn("Cache lookup failed chunk=%s: %v", chunk.ID, err)
	}

	profile, route := p.router.RouteChunk(chunk, doc.SourceLang)
	p.record(driven.TelemetryEvent{
		Kind: "routed", DocumentID: doc.ID, ChunkID: chunk.ID,
		Outcome: string(route.Path) + "/" + string(route.Tier),
	})

	outcome := p.fallback.Run(ctx, chunk, doc.TargetLang, doc.Level, route)

	warnings := outcome.Warnings
	for _, cd := range profile.Domains {
		warnings = append(warnings, fmt.Sprintf("contains_%s_content", cd))
	}

	if outcome.Verified && !outcome.SafeFallback {
		now := time.Now()
		stored := domain.CacheEntry{
			Fingerprint:   fp,
			Text:          outcome.Text,
			Verdict:       true,
			PolicyVersion: p.policyVersion,
			CreatedAt:     now,
		}
		if p.cacheTTL > 0 {
			stored.ExpiresAt = now.Add(p.cacheTTL)
		}
		if err := p.cache.Store(ctx, stored); err != nil {
			logger.Warn("Cache store failed chunk=%s: %v", chunk.ID, err)
		}
	}

	trace := append([]domain.PipelineState{domain.StatePending, domain.StateRouted}, outcome.Trace...)
	return sharedChunk{
		Text:     outcome.Text,
		State:    outcome.State,
		Trace:    trace,
		Route:    outcome.Route,
		Attempts: outcome.Attempts,
		Warnings: warnings,
		Safe:     outcome.SafeFallback,
	}
}

func (p *Pipeline) timeoutResult(doc *domain.Document, chunk domain.Chunk) domain.ChunkResult {
	p.record(driven.TelemetryEvent{
		Kind: "safe_fallback", DocumentID: doc.ID, ChunkID: chunk.ID, Outcome: "timeout",
	})
	return domain.ChunkResult{
		Ordinal:      chunk.Ordinal,
		Text:         domain.SafeFallbackMessage(doc.TargetLang),
		State:        domain.StateFailed,
		Trace:        []domain.PipelineState{domain.StatePending, domain.StateFailed},
		SafeFallback: true,
		Warnings:     []string{fmt.Sprintf("chunk_%d_timeout", chunk.Ordinal)},
	}
}

func (p *Pipeline) record(event driven.TelemetryEvent) {
	if p.telemetry != nil {
		p.telemetry.Record(event)
	}
}

// extractKeyPoints builds a short extractive summary: the first sentence of
// each verified chunk, up to a fixed cap. Safe-fallback chunks contribute
// nothing.
func extractKeyPoints(results []domain.ChunkResult) []string {
	var points []string
	for _, res := range results {
		if res.SafeFallback {
			continue
		}
		if sent := firstSentence(res.Text); sent != "" {
			points = append(points, sent)
		}
		if len(points) == maxKeyPoints {
			break
		}
	}
	return points
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "- ")
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?', '\n':
			return strings.TrimSpace(strings.TrimSuffix(text[:i+1], "\n"))
		}
	}
	return text
}

func mergeWarnings(first, second []string) []string {
	if len(first) == 0 {
		return second
	}
	seen := make(map[string]struct{}, len(first))
	merged := make([]string, 0, len(first)+len(second))
	for _, w := range first {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		merged = append(merged, w)
	}
	for _, w := range second {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		merged = append(merged, w)
	}
	return merged
}
