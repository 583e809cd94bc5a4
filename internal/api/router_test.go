package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"route-generation-service/internal/adapters/directions"
	"route-generation-service/internal/adapters/repositories"
	"route-generation-service/internal/api/dto"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/services"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	ctx := context.Background()

	points := make([]domain.GeoPoint, 0, 3)
	for _, c := range []domain.Coordinates{
		{Lon: 6.96, Lat: 49.2613},
		{Lon: 6.97, Lat: 49.2613},
		{Lon: 6.96, Lat: 49.2585},
	} {
		gp, err := store.SaveGeoPoint(ctx, &domain.GeoPoint{Coordinates: c})
		require.NoError(t, err)
		points = append(points, *gp)
	}
	_, err := store.SavePart(ctx, &domain.RoutePart{Title: "River loop", Distance: 4500, IsRoute: true, Points: points})
	require.NoError(t, err)

	provider := directions.NewPassThroughProvider(func([]domain.Coordinates) float64 { return 4700 })
	gen := &services.Generator{
		Parts:      store,
		Index:      store,
		Profiles:   store,
		Searches:   store,
		Directions: provider,
		Workers:    2,
	}

	return NewRouter(Deps{
		Generator:    gen,
		Parts:        store,
		Searches:     store,
		DefaultStart: "49.26,6.96",
	}), store
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReady(t *testing.T) {
	failing := NewRouter(Deps{Ready: func(context.Context) error { return errors.New("db down") }})

	rec := httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	router, _ := newTestRouter(t)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestCreateSearchJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	body := strings.NewReader(`{"distance": 5000, "preference": "distance", "start": "49.26,6.96"}`)
	req := httptest.NewRequest(http.MethodPost, "/searches", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[dto.SearchResultResponse](t, rec)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "u1", res.UserID)
	assert.Equal(t, "distance", res.Preference)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, 4700.0, res.Routes[0].Distance)
	assert.Equal(t, "New Route (4.7 km)", res.Routes[0].Title)
	assert.Len(t, res.FamiliarityScores, 1)

	// The persisted result is readable afterwards.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/searches/"+res.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[dto.SearchResultResponse](t, rec)
	assert.Equal(t, res.ID, again.ID)
	assert.Len(t, again.Routes, 1)

	// And so is the generated route.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/"+strconv.FormatInt(res.Routes[0].ID, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	route := decode[dto.RouteResponse](t, rec)
	assert.True(t, route.IsGenerated)
	assert.Len(t, route.Coordinates, 5)
}

func TestCreateSearchQueryParamsUsesDefaults(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/searches", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.SearchResultResponse](t, rec)
	assert.Equal(t, 5000.0, res.Distance)
	assert.Equal(t, "discover", res.Preference)
}

func TestCreateSearchRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name        string
		target      string
		body        string
		contentType string
	}{
		{"unknown preference", "/searches?preference=scenic", "", ""},
		{"negative distance", "/searches?distance=-5", "", ""},
		{"bad start", "/searches?start=north", "", ""},
		{"malformed json", "/searches", `{"distance":`, "application/json"},
		{"unknown json field", "/searches", `{"speed": 20}`, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.body != "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGetMissingResources(t *testing.T) {
	router, _ := newTestRouter(t)

	for target, want := range map[string]int{
		"/searches/does-not-exist": http.StatusNotFound,
		"/routes/999":              http.StatusNotFound,
		"/routes/abc":              http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, want, rec.Code, target)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
