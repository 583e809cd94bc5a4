package directions

import (
	"context"
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/ports"
	"sync"
)

// MockDirectionsProvider answers from a user-supplied function and records
// every request. It is used by tests and local runs without a Mapbox token.
type MockDirectionsProvider struct {
	mu    sync.Mutex
	fn    func(waypoints []domain.Coordinates) (ports.DirectionsResult, error)
	calls [][]domain.Coordinates
}

func NewMockDirectionsProvider(fn func([]domain.Coordinates) (ports.DirectionsResult, error)) *MockDirectionsProvider {
	return &MockDirectionsProvider{fn: fn}
}

// NewPassThroughProvider returns the request waypoints unchanged as the route
// and reports whatever distance the given function computes for them.
func NewPassThroughProvider(distance func([]domain.Coordinates) float64) *MockDirectionsProvider {
	return NewMockDirectionsProvider(func(w []domain.Coordinates) (ports.DirectionsResult, error) {
		return ports.DirectionsResult{DistanceMeters: distance(w), Waypoints: w}, nil
	})
}

func (p *MockDirectionsProvider) Route(ctx context.Context, waypoints []domain.Coordinates) (ports.DirectionsResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DirectionsResult{}, err
	}
	if len(waypoints) < 2 || len(waypoints) > ports.MaxWaypoints {
		return ports.DirectionsResult{}, fmt.Errorf("mock route: need 2..%d waypoints, got %d", ports.MaxWaypoints, len(waypoints))
	}

	p.mu.Lock()
	p.calls = append(p.calls, append([]domain.Coordinates(nil), waypoints...))
	p.mu.Unlock()

	return p.fn(waypoints)
}

// Calls returns the waypoint lists of every request received so far.
func (p *MockDirectionsProvider) Calls() [][]domain.Coordinates {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]domain.Coordinates(nil), p.calls...)
}
