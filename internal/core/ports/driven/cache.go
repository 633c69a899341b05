package driven

import (
	"context"
	"time"

	"github.com/klartext/klartext/internal/core/domain"
)

// CacheStore persists verified simplification results keyed by fingerprint.
//
// Store failures must never be fatal to a request: callers log them and
// proceed as if the lookup missed. Request coalescing (at most one in-flight
// computation per fingerprint) is enforced by the pipeline, not here, so
// implementations only need to serialise concurrent writers for the same key.
type CacheStore interface {
	// Lookup returns the entry for a fingerprint.
	// Returns domain.ErrCacheMiss if no live entry exists. Expired entries
	// are misses.
	Lookup(ctx context.Context, fingerprint string) (domain.CacheEntry, error)

	// Store saves an entry. Storing the same fingerprint twice is
	// idempotent: the entry converges to the latest write.
	Store(ctx context.Context, entry domain.CacheEntry) error

	// Purge removes expired entries. Returns the number removed.
	Purge(ctx context.Context, now time.Time) (int, error)

	// InvalidateBelow removes all entries with a policy version lower
	// than the given one. Called when prompt or verification rules change
	// so stale semantics are never served.
	InvalidateBelow(ctx context.Context, policyVersion int) (int, error)

	// Close releases resources.
	Close() error
}
