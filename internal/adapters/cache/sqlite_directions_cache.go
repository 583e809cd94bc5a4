package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"time"
)

// SQLite backed cache of directions results for single-instance runs.
// Keys are expected to be fingerprints built by the caller.
type SqliteDirectionsCache struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func NewSqliteDirectionsCache(db *sql.DB, ttl time.Duration) *SqliteDirectionsCache {
	return &SqliteDirectionsCache{DB: db, TTL: ttl, Now: time.Now}
}

// Initialize the SQLite cache schema.
func InitSqliteSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init cache schema: DB is nil")
	}

	createQuery := `
	CREATE TABLE IF NOT EXISTS directions_cache (
		cache_key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, createQuery); err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

func (s *SqliteDirectionsCache) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Fetch a cached result. Expired rows are reported as misses.
func (s *SqliteDirectionsCache) Get(ctx context.Context, key string) (_ ports.DirectionsResult, _ bool, err error) {
	defer obs.Time(ctx, "directions.cache.sqlite.Get")(&err)

	if s.DB == nil {
		return ports.DirectionsResult{}, false, errors.New("directions cache: db is nil")
	}

	q := `
	SELECT
		payload,
		expires_at
	FROM directions_cache
	WHERE cache_key = ?;
	`

	var payload []byte
	var expiresAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: query directions_cache table: %w", err)
	}

	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		return ports.DirectionsResult{}, false, nil
	}

	res, err := decodeResult(payload)
	if err != nil {
		return ports.DirectionsResult{}, false, err
	}
	return res, true, nil
}

// Store a result, replacing any previous entry for the key.
func (s *SqliteDirectionsCache) Put(ctx context.Context, key string, result ports.DirectionsResult) error {
	if s.DB == nil {
		return errors.New("directions cache: db is nil")
	}
	if key == "" {
		return errors.New("insert directions cache: empty key")
	}

	payload, err := encodeResult(result)
	if err != nil {
		return err
	}

	var expiresAt int64
	if s.TTL > 0 {
		expiresAt = s.now().Add(s.TTL).Unix()
	}

	stmt := `
	INSERT OR REPLACE INTO directions_cache (
		cache_key,
		payload,
		expires_at
	)
	VALUES (?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, stmt, key, payload, expiresAt); err != nil {
		return fmt.Errorf("insert directions cache key=%q: %w", key, err)
	}

	return nil
}
