package driving

import (
	"context"

	"github.com/klartext/klartext/internal/core/domain"
)

// SimplifyService runs the full simplification pipeline for one document:
// chunking, caching, routing, inference, post-processing, verification,
// fallback and recombination.
type SimplifyService interface {
	// Simplify processes a request end to end. The context deadline
	// bounds the whole document: chunks still pending at cancellation
	// are returned as safe-fallback results with a timeout warning.
	//
	// Only whole-document validation failures return an error. Per-chunk
	// failures are contained to their chunk and degrade to safe-fallback
	// messages inside the response.
	Simplify(ctx context.Context, req domain.SimplifyRequest) (domain.SimplifyResponse, error)
}
