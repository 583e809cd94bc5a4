package ports

import (
	"context"
	"errors"
	"route-generation-service/internal/domain"
)

// ErrNotFound is returned by loaders when no record matches.
var ErrNotFound = errors.New("not found")

// PartCriteria selects RouteParts. Zero-valued fields do not constrain.
// Distance bounds are exclusive.
type PartCriteria struct {
	MinDistance float64
	MaxDistance float64
	IsRoute     *bool
	IsGenerated *bool
	ExternalID  *int64
}

// Port: persisted corpus of routes and segments.
type RoutePartRepository interface {
	// List parts matching criteria; points are populated when detailed is set.
	ListParts(ctx context.Context, criteria PartCriteria, detailed bool, limit int) ([]*domain.RoutePart, error)
	// Load the first part matching criteria or ErrNotFound.
	LoadPart(ctx context.Context, criteria PartCriteria) (*domain.RoutePart, error)
	// Load a part with its point sequence by id or ErrNotFound.
	GetPart(ctx context.Context, id int64) (*domain.RoutePart, error)
	// Create or update a part. Updates replace the point sequence.
	SavePart(ctx context.Context, part *domain.RoutePart) (*domain.RoutePart, error)
	// Insert a generated part unless one with the same external id exists.
	// created is false when the existing record is returned instead.
	CreateGeneratedPart(ctx context.Context, part *domain.RoutePart) (_ *domain.RoutePart, created bool, err error)
	SaveGeoPoint(ctx context.Context, point *domain.GeoPoint) (*domain.GeoPoint, error)
}

// Port: spatial lookups over persisted GeoPoints.
type GeoIndex interface {
	// Points within meters of (lat, lng), ordered by descending distance.
	FindWithinRadius(ctx context.Context, lat, lng, meters float64, limit int) ([]domain.GeoPoint, error)
}

// Port: search result persistence.
type SearchResultRepository interface {
	SaveSearchResult(ctx context.Context, result *domain.SearchResult) (*domain.SearchResult, error)
	GetSearchResult(ctx context.Context, id string) (*domain.SearchResult, error)
}

// Port: a user's activity history.
type ProfileLoader interface {
	LoadActivities(ctx context.Context, userID string) ([]domain.Activity, error)
}

// Port: notified once per newly materialized generated route.
// Implementations must not block the caller on delivery.
type RouteExporter interface {
	RouteCreated(ctx context.Context, route *domain.RoutePart)
}

func Bool(b bool) *bool { return &b }

func Int64(n int64) *int64 { return &n }
