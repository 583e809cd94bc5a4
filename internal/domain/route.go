package domain

import "time"

// RoutePart is a persisted path: a Route (IsRoute) or a Segment.
// Generated routes carry IsGenerated and an ExternalID identity hash.
//
// LowerBoundDistance and FamiliarityScore are computed during a search run
// and are never written back to the route record itself.
type RoutePart struct {
	ID          int64
	ExternalID  int64
	Title       string
	Description string
	OwnerID     string
	Distance    float64
	IsRoute     bool
	IsGenerated bool
	Points      []GeoPoint
	PartIDs     []int64
	CreatedAt   time.Time

	LowerBoundDistance float64
	FamiliarityScore   float64
}

// Endpoints returns the first and last point. ok is false for parts with fewer than
// two points, which have no defined endpoints.
func (p *RoutePart) Endpoints() (first, last Coordinates, ok bool) {
	if len(p.Points) < 2 {
		return Coordinates{}, Coordinates{}, false
	}
	return p.Points[0].Coordinates, p.Points[len(p.Points)-1].Coordinates, true
}

// Candidate is a routed path returned by the directions service for one Combo.
type Candidate struct {
	Distance         float64
	Waypoints        []Coordinates
	Parts            []*RoutePart
	FamiliarityScore float64
}

// PartIDs returns the ids of the parts the candidate was built from.
func (c Candidate) PartIDs() []int64 {
	ids := make([]int64, 0, len(c.Parts))
	for _, p := range c.Parts {
		ids = append(ids, p.ID)
	}
	return ids
}
