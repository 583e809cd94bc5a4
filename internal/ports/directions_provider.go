package ports

import (
	"context"
	"route-generation-service/internal/domain"
)

// MaxWaypoints is the largest waypoint list a directions request may carry.
const MaxWaypoints = 25

// Routed path returned by a directions service.
type DirectionsResult struct {
	DistanceMeters float64
	Waypoints      []domain.Coordinates
}

// Contract for routing an ordered list of waypoints.
type DirectionsProvider interface {
	// Route the waypoints (2..MaxWaypoints) and return the total distance and
	// the maneuver locations across all legs of the first route.
	Route(ctx context.Context, waypoints []domain.Coordinates) (DirectionsResult, error)
}

// Persistent cache of directions results keyed by a waypoint fingerprint.
type DirectionsCache interface {
	Get(ctx context.Context, key string) (DirectionsResult, bool, error)
	Put(ctx context.Context, key string, result DirectionsResult) error
}
