package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/db"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Postgres-backed implementation of the store ports.
type PostgresStore struct{ DB db.Querier }

func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{DB: q}
}

const partColumns = `id, COALESCE(external_id, 0), title, description, owner_id, distance, is_route, is_generated, part_ids, created_at`

func scanPart(row pgx.Row) (*domain.RoutePart, error) {
	var p domain.RoutePart
	if err := row.Scan(
		&p.ID, &p.ExternalID, &p.Title, &p.Description, &p.OwnerID,
		&p.Distance, &p.IsRoute, &p.IsGenerated, &p.PartIDs, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// whereClause renders criteria as a WHERE clause with positional arguments.
func whereClause(c ports.PartCriteria) (string, []any) {
	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if c.MinDistance > 0 {
		add("distance > ?", c.MinDistance)
	}
	if c.MaxDistance > 0 {
		add("distance < ?", c.MaxDistance)
	}
	if c.IsRoute != nil {
		add("is_route = ?", *c.IsRoute)
	}
	if c.IsGenerated != nil {
		add("is_generated = ?", *c.IsGenerated)
	}
	if c.ExternalID != nil {
		add("external_id = ?", *c.ExternalID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Return parts matching the criteria ordered by id.
func (s *PostgresStore) ListParts(
	ctx context.Context,
	c ports.PartCriteria,
	detailed bool,
	limit int,
) (_ []*domain.RoutePart, err error) {
	defer obs.Time(ctx, "store.ListParts")(&err)

	where, args := whereClause(c)
	q := `SELECT ` + partColumns + ` FROM route_parts ` + where + ` ORDER BY id`
	if limit > 0 {
		args = append(args, limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list parts: query route_parts table: %w", err)
	}
	defer rows.Close()

	parts := make([]*domain.RoutePart, 0, 64)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("list parts: scan row: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parts: row iteration: %w", err)
	}

	if detailed && len(parts) > 0 {
		if err := s.attachPoints(ctx, parts); err != nil {
			return nil, fmt.Errorf("list parts: %w", err)
		}
	}
	return parts, nil
}

// attachPoints loads the ordered point sequences of parts in one query.
func (s *PostgresStore) attachPoints(ctx context.Context, parts []*domain.RoutePart) error {
	ids := make([]int64, 0, len(parts))
	byID := make(map[int64]*domain.RoutePart, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := s.DB.Query(ctx, `
	SELECT rpp.route_part_id, g.id, g.lng, g.lat
	FROM route_part_points rpp
	JOIN geo_points g ON g.id = rpp.geo_point_id
	WHERE rpp.route_part_id = ANY($1)
	ORDER BY rpp.route_part_id, rpp.position;
	`, ids)
	if err != nil {
		return fmt.Errorf("query route_part_points table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var partID int64
		var gp domain.GeoPoint
		if err := rows.Scan(&partID, &gp.ID, &gp.Coordinates.Lon, &gp.Coordinates.Lat); err != nil {
			return fmt.Errorf("scan point row: %w", err)
		}
		if p, ok := byID[partID]; ok {
			gp.RouteIDs = []int64{partID}
			p.Points = append(p.Points, gp)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("point row iteration: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadPart(ctx context.Context, c ports.PartCriteria) (*domain.RoutePart, error) {
	parts, err := s.ListParts(ctx, c, true, 1)
	if err != nil {
		return nil, fmt.Errorf("load part: %w", err)
	}
	if len(parts) == 0 {
		return nil, ports.ErrNotFound
	}
	return parts[0], nil
}

func (s *PostgresStore) GetPart(ctx context.Context, id int64) (*domain.RoutePart, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+partColumns+` FROM route_parts WHERE id = $1`, id)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get part %d: %w", id, err)
	}

	if err := s.attachPoints(ctx, []*domain.RoutePart{p}); err != nil {
		return nil, fmt.Errorf("get part %d: %w", id, err)
	}
	return p, nil
}

func nullableExternalID(p *domain.RoutePart) *int64 {
	if !p.IsGenerated {
		return nil
	}
	id := p.ExternalID
	return &id
}

// Create or update a part. A non-nil point sequence replaces the stored one.
func (s *PostgresStore) SavePart(ctx context.Context, part *domain.RoutePart) (_ *domain.RoutePart, err error) {
	defer obs.Time(ctx, "store.SavePart")(&err)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("save part: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := *part
	if saved.ID == 0 {
		row := tx.QueryRow(ctx, `
		INSERT INTO route_parts (external_id, title, description, owner_id, distance, is_route, is_generated, part_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at;
		`, nullableExternalID(part), part.Title, part.Description, part.OwnerID,
			part.Distance, part.IsRoute, part.IsGenerated, nonNil(part.PartIDs))
		if err := row.Scan(&saved.ID, &saved.CreatedAt); err != nil {
			return nil, fmt.Errorf("save part: insert: %w", err)
		}
	} else {
		tag, err := tx.Exec(ctx, `
		UPDATE route_parts
		SET external_id = $2, title = $3, description = $4, owner_id = $5,
			distance = $6, is_route = $7, is_generated = $8, part_ids = $9
		WHERE id = $1;
		`, part.ID, nullableExternalID(part), part.Title, part.Description, part.OwnerID,
			part.Distance, part.IsRoute, part.IsGenerated, nonNil(part.PartIDs))
		if err != nil {
			return nil, fmt.Errorf("save part %d: update: %w", part.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("save part %d: %w", part.ID, ports.ErrNotFound)
		}
	}

	if part.Points != nil {
		pointIDs := make([]int64, 0, len(part.Points))
		for _, gp := range part.Points {
			pointIDs = append(pointIDs, gp.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM route_part_points WHERE route_part_id = $1;`, saved.ID); err != nil {
			return nil, fmt.Errorf("save part %d: clear points: %w", saved.ID, err)
		}
		if _, err := tx.Exec(ctx, `
		INSERT INTO route_part_points (route_part_id, position, geo_point_id)
		SELECT $1, t.ord - 1, t.gid
		FROM unnest($2::bigint[]) WITH ORDINALITY AS t(gid, ord);
		`, saved.ID, pointIDs); err != nil {
			return nil, fmt.Errorf("save part %d: insert points: %w", saved.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("save part: commit: %w", err)
	}

	return &saved, nil
}

// Insert a generated part relying on the (external_id, is_generated) unique
// constraint. When another writer got there first its record is returned.
func (s *PostgresStore) CreateGeneratedPart(
	ctx context.Context,
	part *domain.RoutePart,
) (_ *domain.RoutePart, created bool, err error) {
	defer obs.Time(ctx, "store.CreateGeneratedPart")(&err)

	saved := *part
	saved.IsGenerated = true
	saved.Points = nil

	row := s.DB.QueryRow(ctx, `
	INSERT INTO route_parts (external_id, title, description, owner_id, distance, is_route, is_generated, part_ids)
	VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
	ON CONFLICT (external_id, is_generated) DO NOTHING
	RETURNING id, created_at;
	`, saved.ExternalID, saved.Title, saved.Description, saved.OwnerID,
		saved.Distance, saved.IsRoute, nonNil(saved.PartIDs))

	err = row.Scan(&saved.ID, &saved.CreatedAt)
	if err == nil {
		return &saved, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("create generated part: insert: %w", err)
	}

	existing, err := s.LoadPart(ctx, ports.PartCriteria{
		ExternalID:  ports.Int64(part.ExternalID),
		IsGenerated: ports.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("create generated part: load existing %d: %w", part.ExternalID, err)
	}
	return existing, false, nil
}

// Insert a point. Route back-references are recorded when the owning route's
// point sequence is saved.
func (s *PostgresStore) SaveGeoPoint(ctx context.Context, point *domain.GeoPoint) (*domain.GeoPoint, error) {
	saved := *point
	if saved.ID != 0 {
		if _, err := s.DB.Exec(ctx, `UPDATE geo_points SET lng = $2, lat = $3 WHERE id = $1;`,
			saved.ID, saved.Coordinates.Lon, saved.Coordinates.Lat); err != nil {
			return nil, fmt.Errorf("save geo point %d: %w", saved.ID, err)
		}
		return &saved, nil
	}

	row := s.DB.QueryRow(ctx, `INSERT INTO geo_points (lng, lat) VALUES ($1, $2) RETURNING id;`,
		saved.Coordinates.Lon, saved.Coordinates.Lat)
	if err := row.Scan(&saved.ID); err != nil {
		return nil, fmt.Errorf("save geo point: insert: %w", err)
	}
	return &saved, nil
}

// Return points within meters of (lat, lng), farthest first. A bounding box
// narrows the scan before the exact haversine test. limit <= 0 means all.
func (s *PostgresStore) FindWithinRadius(
	ctx context.Context,
	lat, lng, meters float64,
	limit int,
) (_ []domain.GeoPoint, err error) {
	defer obs.Time(ctx, "store.FindWithinRadius")(&err)

	dLat := meters / 111320.0
	dLng := 180.0
	if c := math.Cos(lat * math.Pi / 180); c > 1e-9 {
		dLng = math.Min(180, meters/(111320.0*c))
	}

	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := s.DB.Query(ctx, `
	WITH nearby AS (
		SELECT id, lng, lat,
			2 * 6371000 * asin(sqrt(
				power(sin(radians(lat - $1) / 2), 2) +
				cos(radians($1)) * cos(radians(lat)) * power(sin(radians(lng - $2) / 2), 2)
			)) AS dist
		FROM geo_points
		WHERE lat BETWEEN $1 - $4 AND $1 + $4
			AND lng BETWEEN $2 - $5 AND $2 + $5
	)
	SELECT id, lng, lat
	FROM nearby
	WHERE dist <= $3
	ORDER BY dist DESC, id
	LIMIT $6;
	`, lat, lng, meters, dLat, dLng, lim)
	if err != nil {
		return nil, fmt.Errorf("find within radius: query geo_points table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.GeoPoint, 0)
	for rows.Next() {
		var gp domain.GeoPoint
		if err := rows.Scan(&gp.ID, &gp.Coordinates.Lon, &gp.Coordinates.Lat); err != nil {
			return nil, fmt.Errorf("find within radius: scan row: %w", err)
		}
		out = append(out, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find within radius: row iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveSearchResult(ctx context.Context, r *domain.SearchResult) (*domain.SearchResult, error) {
	saved := *r
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}

	routeIDs := make([]int64, 0, len(r.Routes))
	for _, route := range r.Routes {
		routeIDs = append(routeIDs, route.ID)
	}

	_, err := s.DB.Exec(ctx, `
	INSERT INTO search_results (id, user_id, distance, preference, route_ids, familiarity_scores, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, saved.ID, saved.UserID, saved.Distance, string(saved.Preference), routeIDs,
		nonNilScores(saved.FamiliarityScores), saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save search result: insert: %w", err)
	}
	return &saved, nil
}

// Load a search result with its routes (without point sequences) in stored order.
func (s *PostgresStore) GetSearchResult(ctx context.Context, id string) (*domain.SearchResult, error) {
	var r domain.SearchResult
	var pref string
	var routeIDs []int64

	err := s.DB.QueryRow(ctx, `
	SELECT id, user_id, distance, preference, route_ids, familiarity_scores, created_at
	FROM search_results
	WHERE id = $1;
	`, id).Scan(&r.ID, &r.UserID, &r.Distance, &pref, &routeIDs, &r.FamiliarityScores, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search result %s: %w", id, err)
	}
	r.Preference = domain.Preference(pref)

	if len(routeIDs) == 0 {
		return &r, nil
	}

	rows, err := s.DB.Query(ctx, `SELECT `+partColumns+` FROM route_parts WHERE id = ANY($1)`, routeIDs)
	if err != nil {
		return nil, fmt.Errorf("get search result %s: query routes: %w", id, err)
	}
	defer rows.Close()

	byID := make(map[int64]*domain.RoutePart, len(routeIDs))
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("get search result %s: scan route: %w", id, err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get search result %s: route iteration: %w", id, err)
	}

	for i, rid := range routeIDs {
		p, ok := byID[rid]
		if !ok {
			continue
		}
		if i < len(r.FamiliarityScores) {
			p.FamiliarityScore = r.FamiliarityScores[i]
		}
		r.Routes = append(r.Routes, p)
	}
	return &r, nil
}

func (s *PostgresStore) LoadActivities(ctx context.Context, userID string) (_ []domain.Activity, err error) {
	defer obs.Time(ctx, "store.LoadActivities")(&err)

	rows, err := s.DB.Query(ctx, `
	SELECT a.id, a.user_id,
		COALESCE(array_agg(ap.geo_point_id ORDER BY ap.geo_point_id)
			FILTER (WHERE ap.geo_point_id IS NOT NULL), '{}')
	FROM activities a
	LEFT JOIN activity_points ap ON ap.activity_id = a.id
	WHERE a.user_id = $1
	GROUP BY a.id, a.user_id
	ORDER BY a.id;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load activities: query activities table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.PointIDs); err != nil {
			return nil, fmt.Errorf("load activities: scan row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load activities: row iteration: %w", err)
	}
	return out, nil
}

// Record an activity touching the given points.
func (s *PostgresStore) SaveActivity(ctx context.Context, a domain.Activity) (*domain.Activity, error) {
	saved := a
	if err := s.DB.QueryRow(ctx, `INSERT INTO activities (user_id) VALUES ($1) RETURNING id;`, a.UserID).Scan(&saved.ID); err != nil {
		return nil, fmt.Errorf("save activity: insert: %w", err)
	}

	if len(a.PointIDs) > 0 {
		if _, err := s.DB.Exec(ctx, `
		INSERT INTO activity_points (activity_id, geo_point_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING;
		`, saved.ID, a.PointIDs); err != nil {
			return nil, fmt.Errorf("save activity %d: insert points: %w", saved.ID, err)
		}
	}
	return &saved, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func nonNilScores(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
