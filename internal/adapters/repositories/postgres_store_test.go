package repositories

import (
	"context"
	"errors"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/ports"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var partCols = []string{"id", "external_id", "title", "description", "owner_id", "distance", "is_route", "is_generated", "part_ids", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause(ports.PartCriteria{
		MinDistance: 1000,
		MaxDistance: 5000,
		IsRoute:     ports.Bool(true),
		ExternalID:  ports.Int64(7),
	})

	assert.Equal(t, "WHERE distance > $1 AND distance < $2 AND is_route = $3 AND external_id = $4", where)
	assert.Equal(t, []any{1000.0, 5000.0, true, int64(7)}, args)

	where, args = whereClause(ports.PartCriteria{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestPostgresListParts(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM route_parts WHERE distance > \$1 AND distance < \$2 AND is_route = \$3 AND is_generated = \$4 ORDER BY id LIMIT \$5`).
		WithArgs(1000.0, 5000.0, true, false, 1000).
		WillReturnRows(pgxmock.NewRows(partCols).
			AddRow(int64(1), int64(0), "River loop", "", "", 4500.0, true, false, []int64{}, created).
			AddRow(int64(2), int64(0), "Park loop", "", "", 3200.0, true, false, []int64{}, created))

	mock.ExpectQuery(`FROM route_part_points rpp`).
		WithArgs([]int64{1, 2}).
		WillReturnRows(pgxmock.NewRows([]string{"route_part_id", "id", "lng", "lat"}).
			AddRow(int64(1), int64(10), 6.96, 49.2613).
			AddRow(int64(1), int64(11), 6.96, 49.2585).
			AddRow(int64(2), int64(12), 6.99, 49.25))

	parts, err := store.ListParts(context.Background(), ports.PartCriteria{
		MinDistance: 1000,
		MaxDistance: 5000,
		IsRoute:     ports.Bool(true),
		IsGenerated: ports.Bool(false),
	}, true, 1000)

	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "River loop", parts[0].Title)
	require.Len(t, parts[0].Points, 2)
	assert.Equal(t, domain.Coordinates{Lon: 6.96, Lat: 49.2585}, parts[0].Points[1].Coordinates)
	assert.Equal(t, []int64{1}, parts[0].Points[0].RouteIDs)
	assert.Len(t, parts[1].Points, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateGeneratedPartConflictReturnsExisting(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO route_parts .* ON CONFLICT \(external_id, is_generated\) DO NOTHING`).
		WithArgs(int64(-1866362530), "New Route (4.7 km)", "desc", "u1", 4700.0, true, []int64{3}).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`FROM route_parts WHERE is_generated = \$1 AND external_id = \$2 ORDER BY id LIMIT \$3`).
		WithArgs(true, int64(-1866362530), 1).
		WillReturnRows(pgxmock.NewRows(partCols).
			AddRow(int64(42), int64(-1866362530), "New Route (4.7 km)", "desc", "u0", 4700.0, true, true, []int64{3}, created))

	mock.ExpectQuery(`FROM route_part_points rpp`).
		WithArgs([]int64{42}).
		WillReturnRows(pgxmock.NewRows([]string{"route_part_id", "id", "lng", "lat"}).
			AddRow(int64(42), int64(100), 6.96, 49.26))

	route, created2, err := store.CreateGeneratedPart(context.Background(), &domain.RoutePart{
		ExternalID:  -1866362530,
		Title:       "New Route (4.7 km)",
		Description: "desc",
		OwnerID:     "u1",
		Distance:    4700,
		IsRoute:     true,
		PartIDs:     []int64{3},
	})

	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, int64(42), route.ID)
	assert.Equal(t, "u0", route.OwnerID)
	assert.Len(t, route.Points, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateGeneratedPartInserts(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO route_parts`).
		WithArgs(int64(5), "t", "", "u1", 4700.0, true, []int64{}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(43), created))

	route, ok, err := store.CreateGeneratedPart(context.Background(), &domain.RoutePart{
		ExternalID: 5, Title: "t", OwnerID: "u1", Distance: 4700, IsRoute: true,
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(43), route.ID)
	assert.True(t, route.IsGenerated)
	assert.Equal(t, created, route.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSavePartReplacesPointSequence(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE route_parts`).
		WithArgs(int64(42), pgxmock.AnyArg(), "t", "", "u1", 4700.0, true, true, []int64{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM route_part_points`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO route_part_points`).
		WithArgs(int64(42), []int64{100, 101}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	saved, err := store.SavePart(context.Background(), &domain.RoutePart{
		ID: 42, ExternalID: 5, Title: "t", OwnerID: "u1", Distance: 4700, IsRoute: true, IsGenerated: true,
		Points: []domain.GeoPoint{{ID: 100}, {ID: 101}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSavePartMissingRow(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE route_parts`).
		WithArgs(int64(9), pgxmock.AnyArg(), "", "", "", 1.0, false, false, []int64{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := store.SavePart(context.Background(), &domain.RoutePart{ID: 9, Distance: 1})

	assert.ErrorIs(t, err, ports.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindWithinRadius(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectQuery(`ORDER BY dist DESC, id`).
		WithArgs(49.26, 6.96, 280.0, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "lng", "lat"}).
			AddRow(int64(7), 6.962, 49.26).
			AddRow(int64(3), 6.96, 49.26))

	points, err := store.FindWithinRadius(context.Background(), 49.26, 6.96, 280, 0)

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, int64(7), points[0].ID)
	assert.Equal(t, domain.Coordinates{Lon: 6.96, Lat: 49.26}, points[1].Coordinates)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearchResults(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO search_results`).
		WithArgs(pgxmock.AnyArg(), "u1", 5000.0, "discover", []int64{2, 1}, []float64{0.8, 0.2}, created).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := store.SaveSearchResult(context.Background(), &domain.SearchResult{
		UserID:            "u1",
		Distance:          5000,
		Preference:        domain.PreferenceDiscover,
		Routes:            []*domain.RoutePart{{ID: 2}, {ID: 1}},
		FamiliarityScores: []float64{0.8, 0.2},
		CreatedAt:         created,
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	mock.ExpectQuery(`FROM search_results`).
		WithArgs(saved.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "distance", "preference", "route_ids", "familiarity_scores", "created_at"}).
			AddRow(saved.ID, "u1", 5000.0, "discover", []int64{2, 1}, []float64{0.8, 0.2}, created))
	mock.ExpectQuery(`FROM route_parts WHERE id = ANY`).
		WithArgs([]int64{2, 1}).
		WillReturnRows(pgxmock.NewRows(partCols).
			AddRow(int64(1), int64(11), "a", "", "u1", 4800.0, true, true, []int64{}, created).
			AddRow(int64(2), int64(12), "b", "", "u1", 5100.0, true, true, []int64{}, created))

	loaded, err := store.GetSearchResult(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Routes, 2)
	assert.Equal(t, int64(2), loaded.Routes[0].ID)
	assert.Equal(t, 0.8, loaded.Routes[0].FamiliarityScore)
	assert.Equal(t, domain.PreferenceDiscover, loaded.Preference)

	mock.ExpectQuery(`FROM search_results`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetSearchResult(context.Background(), "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	for range 7 {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	for range 4 {
		mock.ExpectExec(`CREATE INDEX IF NOT EXISTS`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	mock.ExpectCommit()

	require.NoError(t, InitSchema(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchemaFailureRollsBack(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS route_parts`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := InitSchema(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement #1")
	require.NoError(t, mock.ExpectationsWereMet())
}
