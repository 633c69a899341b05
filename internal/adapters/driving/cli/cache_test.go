package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klartext/klartext/internal/adapters/driven/cache/memory"
	"github.com/klartext/klartext/internal/core/domain"
)

// withTestCache points the cache commands at a pre-populated in-memory
// store so no configuration or database is touched.
func withTestCache(t *testing.T, entries ...domain.CacheEntry) *memory.Cache {
	t.Helper()
	cache := memory.NewCache()
	for _, entry := range entries {
		require.NoError(t, cache.Store(context.Background(), entry))
	}

	originalStore := cacheStore
	cacheStore = cache
	t.Cleanup(func() { cacheStore = originalStore })
	return cache
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCachePurgeCmd_RemovesExpired(t *testing.T) {
	now := time.Now()
	cache := withTestCache(t,
		domain.CacheEntry{Fingerprint: "live", Text: "a", PolicyVersion: 1, CreatedAt: now},
		domain.CacheEntry{Fingerprint: "stale", Text: "b", PolicyVersion: 1, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
	)

	out, err := runCommand(t, "cache", "purge")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 expired entries")
	assert.Equal(t, 1, cache.Len())
}

func TestCacheInvalidateCmd_RemovesOldVersions(t *testing.T) {
	cache := withTestCache(t,
		domain.CacheEntry{Fingerprint: "old", Text: "a", PolicyVersion: 1, CreatedAt: time.Now()},
		domain.CacheEntry{Fingerprint: "current", Text: "b", PolicyVersion: 2, CreatedAt: time.Now()},
	)

	out, err := runCommand(t, "cache", "invalidate", "--below", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 entries below policy version 2")
	assert.Equal(t, 1, cache.Len())
}

func TestCacheInvalidateCmd_RequiresVersion(t *testing.T) {
	withTestCache(t)

	original := settings.PolicyVersion
	settings.PolicyVersion = 0
	defer func() { settings.PolicyVersion = original }()
	defer func() { invalidateBelowVersion = 0 }()
	invalidateBelowVersion = 0

	_, err := runCommand(t, "cache", "invalidate")

	assert.Error(t, err)
}
