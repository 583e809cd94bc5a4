package repositories

import (
	"cmp"
	"context"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/geo"
	"route-generation-service/internal/ports"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process implementation of the store ports.
// It backs local runs without Postgres and the pipeline tests.
// The store is safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	nextPart     int64
	nextPoint    int64
	nextActivity int64
	parts        map[int64]*domain.RoutePart
	points       map[int64]*domain.GeoPoint
	activities   map[string][]domain.Activity
	searches     map[string]*domain.SearchResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		parts:      make(map[int64]*domain.RoutePart),
		points:     make(map[int64]*domain.GeoPoint),
		activities: make(map[string][]domain.Activity),
		searches:   make(map[string]*domain.SearchResult),
	}
}

func matches(p *domain.RoutePart, c ports.PartCriteria) bool {
	if c.MinDistance > 0 && p.Distance <= c.MinDistance {
		return false
	}
	if c.MaxDistance > 0 && p.Distance >= c.MaxDistance {
		return false
	}
	if c.IsRoute != nil && p.IsRoute != *c.IsRoute {
		return false
	}
	if c.IsGenerated != nil && p.IsGenerated != *c.IsGenerated {
		return false
	}
	if c.ExternalID != nil && p.ExternalID != *c.ExternalID {
		return false
	}
	return true
}

func clonePart(p *domain.RoutePart, detailed bool) *domain.RoutePart {
	out := *p
	out.PartIDs = slices.Clone(p.PartIDs)
	out.Points = nil
	if detailed {
		out.Points = slices.Clone(p.Points)
	}
	return &out
}

func (s *MemoryStore) sortedPartIDs() []int64 {
	ids := make([]int64, 0, len(s.parts))
	for id := range s.parts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *MemoryStore) ListParts(ctx context.Context, c ports.PartCriteria, detailed bool, limit int) ([]*domain.RoutePart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.RoutePart, 0)
	for _, id := range s.sortedPartIDs() {
		p := s.parts[id]
		if !matches(p, c) {
			continue
		}
		out = append(out, clonePart(p, detailed))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) LoadPart(ctx context.Context, c ports.PartCriteria) (*domain.RoutePart, error) {
	parts, err := s.ListParts(ctx, c, true, 1)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ports.ErrNotFound
	}
	return parts[0], nil
}

func (s *MemoryStore) GetPart(ctx context.Context, id int64) (*domain.RoutePart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return clonePart(p, true), nil
}

func (s *MemoryStore) SavePart(ctx context.Context, part *domain.RoutePart) (*domain.RoutePart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.savePartLocked(part), nil
}

func (s *MemoryStore) savePartLocked(part *domain.RoutePart) *domain.RoutePart {
	stored := clonePart(part, true)
	stored.LowerBoundDistance = 0
	stored.FamiliarityScore = 0
	if stored.ID == 0 {
		s.nextPart++
		stored.ID = s.nextPart
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.parts[stored.ID] = stored

	out := clonePart(stored, true)
	out.FamiliarityScore = part.FamiliarityScore
	return out
}

func (s *MemoryStore) CreateGeneratedPart(ctx context.Context, part *domain.RoutePart) (*domain.RoutePart, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.sortedPartIDs() {
		p := s.parts[id]
		if p.IsGenerated && p.ExternalID == part.ExternalID {
			return clonePart(p, true), false, nil
		}
	}

	generated := *part
	generated.ID = 0
	generated.IsGenerated = true
	return s.savePartLocked(&generated), true, nil
}

func (s *MemoryStore) SaveGeoPoint(ctx context.Context, point *domain.GeoPoint) (*domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *point
	stored.RouteIDs = slices.Clone(point.RouteIDs)
	stored.ActivityIDs = slices.Clone(point.ActivityIDs)
	if stored.ID == 0 {
		s.nextPoint++
		stored.ID = s.nextPoint
	}
	s.points[stored.ID] = &stored

	out := stored
	return &out, nil
}

// FindWithinRadius returns points within meters of (lat, lng), farthest first.
func (s *MemoryStore) FindWithinRadius(ctx context.Context, lat, lng, meters float64, limit int) ([]domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		p domain.GeoPoint
		d float64
	}
	center := domain.Coordinates{Lon: lng, Lat: lat}
	hits := make([]hit, 0)
	for _, p := range s.points {
		if d := geo.Haversine(center, p.Coordinates); d <= meters {
			hits = append(hits, hit{p: *p, d: d})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(b.d, a.d); c != 0 {
			return c
		}
		return cmp.Compare(a.p.ID, b.p.ID)
	})

	out := make([]domain.GeoPoint, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveSearchResult(ctx context.Context, r *domain.SearchResult) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *r
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Routes = slices.Clone(r.Routes)
	stored.FamiliarityScores = slices.Clone(r.FamiliarityScores)
	s.searches[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *MemoryStore) GetSearchResult(ctx context.Context, id string) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.searches[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *MemoryStore) LoadActivities(ctx context.Context, userID string) ([]domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.activities[userID]), nil
}

// SaveActivity records an activity and back-references its points.
func (s *MemoryStore) SaveActivity(ctx context.Context, a domain.Activity) (*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := a
	saved.PointIDs = slices.Clone(a.PointIDs)
	if saved.ID == 0 {
		s.nextActivity++
		saved.ID = s.nextActivity
	}
	for _, id := range saved.PointIDs {
		if p, ok := s.points[id]; ok {
			p.ActivityIDs = append(p.ActivityIDs, saved.ID)
		}
	}
	s.activities[saved.UserID] = append(s.activities[saved.UserID], saved)

	return &saved, nil
}
