package driven

import (
	"context"

	"github.com/klartext/klartext/internal/core/domain"
)

// Provider is one inference backend capable of simplifying text.
//
// Implementations may include:
//   - Ollama (local model service)
//   - OpenAI-compatible remote APIs
//
// Implementations enforce the per-call timeout themselves and classify
// failures as *domain.ProviderError so the fallback controller can branch
// on the failure kind. Providers never retry internally: the retry policy
// lives entirely in the fallback controller.
type Provider interface {
	// Simplify rewrites the request text in easy language.
	// Returns a *domain.ProviderError on failure.
	Simplify(ctx context.Context, req domain.InferenceRequest) (domain.InferenceResult, error)

	// Name returns the provider identity for telemetry and results.
	Name() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ProviderSet resolves an inference path to a concrete provider.
type ProviderSet interface {
	// For returns the provider serving the given path.
	For(path domain.InferencePath) Provider

	// Close releases all providers.
	Close() error
}
