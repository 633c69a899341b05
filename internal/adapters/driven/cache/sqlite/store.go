// Package sqlite provides a SQLite-backed implementation of the cache store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. The schema is managed
// through versioned migrations embedded in the migrations/ directory.
//
// All operations are thread-safe: the store relies on database-level locking
// provided by SQLite in WAL mode, which is enough to serialise concurrent
// writers for the same fingerprint.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/klartext/klartext/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
)

// Store is a SQLite-backed cache of verified simplification results.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.CacheStore = (*Store)(nil)

// NewStore creates a new SQLite cache at the specified data directory.
// If dataDir is empty, defaults to ~/.klartext/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".klartext", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Lookup returns the entry for a fingerprint.
// Expired entries are treated as misses.
func (s *Store) Lookup(ctx context.Context, fingerprint string) (domain.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, text, verdict, policy_version, created_at, expires_at
		FROM cache_entries WHERE fingerprint = ?
	`, fingerprint)

	var entry domain.CacheEntry
	var verdict int
	var expiresAt sql.NullTime
	if err := row.Scan(&entry.Fingerprint, &entry.Text, &verdict,
		&entry.PolicyVersion, &entry.CreatedAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CacheEntry{}, domain.ErrCacheMiss
		}
		return domain.CacheEntry{}, fmt.Errorf("scanning cache entry: %w", err)
	}

	entry.Verdict = verdict != 0
	if expiresAt.Valid {
		entry.ExpiresAt = expiresAt.Time
	}

	if entry.Expired(time.Now()) {
		return domain.CacheEntry{}, domain.ErrCacheMiss
	}
	return entry, nil
}

// Store saves an entry. Storing the same fingerprint twice converges to the
// latest write.
func (s *Store) Store(ctx context.Context, entry domain.CacheEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (fingerprint, text, verdict, policy_version, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			text = excluded.text,
			verdict = excluded.verdict,
			policy_version = excluded.policy_version,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, entry.Fingerprint, entry.Text, boolToInt(entry.Verdict),
		entry.PolicyVersion, entry.CreatedAt.UTC(), nullableTime(entry.ExpiresAt))

	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns the number removed.
func (s *Store) Purge(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at < ?
	`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging cache entries: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged entries: %w", err)
	}
	return int(removed), nil
}

// InvalidateBelow removes all entries with a policy version lower than the
// given one and returns the number removed.
func (s *Store) InvalidateBelow(ctx context.Context, policyVersion int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries WHERE policy_version < ?
	`, policyVersion)
	if err != nil {
		return 0, fmt.Errorf("invalidating cache entries: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting invalidated entries: %w", err)
	}
	return int(removed), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
