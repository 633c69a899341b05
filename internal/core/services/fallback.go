package services

import (
	"context"
	"fmt"
	"time"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/logger"
	"github.com/klartext/klartext/internal/postprocess"
	"github.com/klartext/klartext/internal/verify"
)

// DefaultMaxAttempts bounds provider calls per chunk.
const DefaultMaxAttempts = 2

// FallbackController runs the bounded retry loop for one chunk: call the
// provider, post-process, verify, and on failure escalate the route and try
// again. After the attempt budget is spent it emits the fixed safe-fallback
// message for that chunk; the rest of the document is unaffected.
//
// Escalation is monotone (local before remote, standard before strict) and
// never reverses. The controller is the only place retry policy lives:
// providers never retry internally.
type FallbackController struct {
	providers   driven.ProviderSet
	post        *postprocess.Processor
	verifier    *verify.Verifier
	telemetry   driven.TelemetrySink
	maxAttempts int
}

// FallbackOption configures a FallbackController.
type FallbackOption func(*FallbackController)

// WithMaxAttempts sets the provider call budget per chunk.
// Non-positive values select the default.
func WithMaxAttempts(n int) FallbackOption {
	return func(f *FallbackController) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithFallbackTelemetry attaches a telemetry sink. Nil sinks drop events.
func WithFallbackTelemetry(sink driven.TelemetrySink) FallbackOption {
	return func(f *FallbackController) {
		f.telemetry = sink
	}
}

// NewFallbackController creates a controller over the given providers,
// post-processor and verifier.
func NewFallbackController(providers driven.ProviderSet, post *postprocess.Processor, verifier *verify.Verifier, opts ...FallbackOption) *FallbackController {
	f := &FallbackController{
		providers:   providers,
		post:        post,
		verifier:    verifier,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// chunkOutcome is the terminal result of the retry loop for one chunk.
type chunkOutcome struct {
	Text         string
	State        domain.PipelineState
	Route        domain.Route
	Attempts     int
	Warnings     []string
	SafeFallback bool
	Verified     bool

	// Trace holds the states traversed inside the retry loop.
	Trace []domain.PipelineState
}

// Run drives the chunk through attempts until it verifies, the budget runs
// out, or the context is cancelled. It always returns text: the verified
// simplification or the safe-fallback message.
func (f *FallbackController) Run(ctx context.Context, chunk domain.Chunk, targetLang domain.Language, level domain.Level, route domain.Route) chunkOutcome {
	var warnings []string
	var trace []domain.PipelineState
	attempts := 0

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return f.safeFallback(chunk, targetLang, route, attempts, trace,
				append(warnings, fmt.Sprintf("chunk_%d_timeout", chunk.Ordinal)))
		}

		attempts = attempt
		provider := f.providers.For(route.Path)
		req := domain.InferenceRequest{
			ChunkID:    chunk.ID,
			Text:       chunk.Text,
			TargetLang: targetLang,
			Level:      level,
			Tier:       route.Tier,
			Attempt:    attempt,
		}

		start := time.Now()
		result, err := provider.Simplify(ctx, req)
		f.record(driven.TelemetryEvent{
			Kind:     "provider_call",
			ChunkID:  chunk.ID,
			Provider: provider.Name(),
			Outcome:  callOutcome(err),
			Attempt:  attempt,
			Duration: time.Since(start),
		})

		if err != nil {
			kind, _ := domain.ProviderErrorKindOf(err)
			logger.Warn("Provider call failed chunk=%s attempt=%d provider=%s kind=%s: %v",
				chunk.ID, attempt, provider.Name(), kind, err)
			if ctx.Err() != nil {
				return f.safeFallback(chunk, targetLang, route, attempts, trace,
					append(warnings, fmt.Sprintf("chunk_%d_timeout", chunk.Ordinal)))
			}
			if attempt < f.maxAttempts {
				trace = append(trace, domain.StateFallbackRetry)
			}
			route = escalateAfterProviderError(route, kind)
			continue
		}
		trace = append(trace, domain.StateInferred)

		processed, ppWarnings := f.post.Apply(result.Text, level)
		trace = append(trace, domain.StatePostProcessed)
		report := f.verifier.Verify(ctx, chunk, processed, targetLang)
		f.record(driven.TelemetryEvent{
			Kind:    "verification",
			ChunkID: chunk.ID,
			Outcome: verdictOutcome(report.Passed()),
			Attempt: attempt,
		})

		if report.Passed() {
			return chunkOutcome{
				Text:         processed,
				State:        domain.StateDone,
				Route:        route,
				Attempts:     attempts,
				Warnings:     append(append(warnings, ppWarnings...), report.Warnings...),
				Verified:     true,
				SafeFallback: false,
				Trace:        append(trace, domain.StateVerified, domain.StateDone),
			}
		}

		logger.Debug("Verification failed chunk=%s attempt=%d checks=%v",
			chunk.ID, attempt, report.FailedChecks())
		f.record(driven.TelemetryEvent{Kind: "fallback", ChunkID: chunk.ID, Attempt: attempt})
		if attempt < f.maxAttempts {
			trace = append(trace, domain.StateFallbackRetry)
		}
		route = route.Escalate()
	}

	return f.safeFallback(chunk, targetLang, route, attempts, trace,
		append(warnings, fmt.Sprintf("chunk_%d_safe_fallback", chunk.Ordinal)))
}

func (f *FallbackController) safeFallback(chunk domain.Chunk, targetLang domain.Language, route domain.Route, attempts int, trace []domain.PipelineState, warnings []string) chunkOutcome {
	f.record(driven.TelemetryEvent{Kind: "safe_fallback", ChunkID: chunk.ID, Attempt: attempts})
	return chunkOutcome{
		Text:         domain.SafeFallbackMessage(targetLang),
		State:        domain.StateFailed,
		Route:        route,
		Attempts:     attempts,
		Warnings:     warnings,
		SafeFallback: true,
		Trace:        append(trace, domain.StateFailed),
	}
}

func (f *FallbackController) record(event driven.TelemetryEvent) {
	if f.telemetry != nil {
		f.telemetry.Record(event)
	}
}

// escalateAfterProviderError picks the next route after a provider failure.
// Connectivity failures on the local path jump straight to the remote path
// at the same tier; everything else tightens via the standard escalation.
func escalateAfterProviderError(route domain.Route, kind domain.ProviderErrorKind) domain.Route {
	if (kind == domain.ProviderTimeout || kind == domain.ProviderUnavailable) && route.Path == domain.PathLocal {
		return domain.Route{Path: domain.PathRemote, Tier: route.Tier}
	}
	return route.Escalate()
}

func callOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := domain.ProviderErrorKindOf(err); ok {
		return string(kind)
	}
	return "error"
}

func verdictOutcome(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}
