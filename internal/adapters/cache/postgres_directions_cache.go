package cache

import (
	"context"
	"errors"
	"fmt"
	"route-generation-service/internal/platform/db"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"time"

	"github.com/jackc/pgx/v5"
)

// PostgresDirectionsCache stores directions results next to the corpus.
type PostgresDirectionsCache struct {
	DB  db.Querier
	TTL time.Duration
}

func NewPostgresDirectionsCache(q db.Querier, ttl time.Duration) *PostgresDirectionsCache {
	return &PostgresDirectionsCache{DB: q, TTL: ttl}
}

// Fetch a cached, unexpired result.
func (s *PostgresDirectionsCache) Get(ctx context.Context, key string) (_ ports.DirectionsResult, _ bool, err error) {
	defer obs.Time(ctx, "directions.cache.postgres.Get")(&err)

	if s.DB == nil {
		return ports.DirectionsResult{}, false, errors.New("directions cache: db is nil")
	}

	q := `
	SELECT payload
	FROM directions_cache
	WHERE cache_key = $1
		AND (expires_at IS NULL OR expires_at > now());
	`

	var payload []byte
	err = s.DB.QueryRow(ctx, q, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: query directions_cache table: %w", err)
	}

	res, err := decodeResult(payload)
	if err != nil {
		return ports.DirectionsResult{}, false, err
	}
	return res, true, nil
}

// Store a result, replacing any previous entry for the key.
func (s *PostgresDirectionsCache) Put(ctx context.Context, key string, result ports.DirectionsResult) error {
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

	var expiresAt *time.Time
	if s.TTL > 0 {
		t := time.Now().Add(s.TTL).UTC()
		expiresAt = &t
	}

	_, err = s.DB.Exec(ctx, `
	INSERT INTO directions_cache (cache_key, payload, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		expires_at = EXCLUDED.expires_at;
	`, key, payload, expiresAt)
	if err != nil {
		return fmt.Errorf("insert directions cache key=%q: %w", key, err)
	}

	return nil
}
