package repositories

import (
	"context"
	"errors"
	"fmt"
	"route-generation-service/internal/platform/db"
)

// Initialize the Postgres schema.
func InitSchema(ctx context.Context, q db.Querier) error {
	if q == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createRoutePartsQuery := `
	CREATE TABLE IF NOT EXISTS route_parts (
		id BIGSERIAL PRIMARY KEY,
		external_id BIGINT,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL DEFAULT '',
		distance DOUBLE PRECISION NOT NULL,
		is_route BOOLEAN NOT NULL,
		is_generated BOOLEAN NOT NULL DEFAULT FALSE,
		part_ids BIGINT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (external_id, is_generated)
	);
	`

	createGeoPointsQuery := `
	CREATE TABLE IF NOT EXISTS geo_points (
		id BIGSERIAL PRIMARY KEY,
		lng DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createRoutePartPointsQuery := `
	CREATE TABLE IF NOT EXISTS route_part_points (
		route_part_id BIGINT NOT NULL REFERENCES route_parts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		geo_point_id BIGINT NOT NULL REFERENCES geo_points(id),
		PRIMARY KEY (route_part_id, position)
	);
	`

	createActivitiesQuery := `
	CREATE TABLE IF NOT EXISTS activities (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL
	);
	`

	createActivityPointsQuery := `
	CREATE TABLE IF NOT EXISTS activity_points (
		activity_id BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		geo_point_id BIGINT NOT NULL REFERENCES geo_points(id),
		PRIMARY KEY (activity_id, geo_point_id)
	);
	`

	createSearchResultsQuery := `
	CREATE TABLE IF NOT EXISTS search_results (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		distance DOUBLE PRECISION NOT NULL,
		preference TEXT NOT NULL,
		route_ids BIGINT[] NOT NULL DEFAULT '{}',
		familiarity_scores DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createDirectionsCacheQuery := `
	CREATE TABLE IF NOT EXISTS directions_cache (
		cache_key TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		expires_at TIMESTAMPTZ
	);
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_route_parts_kind_distance ON route_parts(is_route, is_generated, distance);`,
		`CREATE INDEX IF NOT EXISTS idx_geo_points_lat_lng ON geo_points(lat, lng);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_route_part_points_point ON route_part_points(geo_point_id);`,
	}

	statements := []string{
		createRoutePartsQuery,
		createGeoPointsQuery,
		createRoutePartPointsQuery,
		createActivitiesQuery,
		createActivityPointsQuery,
		createSearchResultsQuery,
		createDirectionsCacheQuery,
	}
	statements = append(statements, createIndexQueries...)

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
