package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klartext/klartext/internal/core/domain"
)

func entry(fp, text string, policyVersion int, expiresAt time.Time) domain.CacheEntry {
	return domain.CacheEntry{
		Fingerprint:   fp,
		Text:          text,
		Verdict:       true,
		PolicyVersion: policyVersion,
		CreatedAt:     time.Now(),
		ExpiresAt:     expiresAt,
	}
}

func TestCache_StoreAndLookup(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	_, err := c.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Store(ctx, entry("fp-1", "easy text", 1, time.Time{})))

	got, err := c.Lookup(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "easy text", got.Text)
	assert.True(t, got.Verdict)
}

func TestCache_StoreIsIdempotent(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, entry("fp-1", "first", 1, time.Time{})))
	require.NoError(t, c.Store(ctx, entry("fp-1", "second", 1, time.Time{})))

	got, err := c.Lookup(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, entry("fp-1", "old", 1, time.Now().Add(-time.Minute))))

	_, err := c.Lookup(ctx, "fp-1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCache_Purge(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, entry("expired", "old", 1, time.Now().Add(-time.Minute))))
	require.NoError(t, c.Store(ctx, entry("live", "new", 1, time.Now().Add(time.Hour))))
	require.NoError(t, c.Store(ctx, entry("forever", "keep", 1, time.Time{})))

	removed, err := c.Purge(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, c.Len())
}

func TestCache_InvalidateBelow(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, entry("v1", "old rules", 1, time.Time{})))
	require.NoError(t, c.Store(ctx, entry("v2", "new rules", 2, time.Time{})))

	removed, err := c.InvalidateBelow(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = c.Lookup(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Lookup(ctx, "v2")
	assert.NoError(t, err)
}
