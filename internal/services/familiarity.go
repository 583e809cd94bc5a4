package services

import (
	"context"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/geo"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

const (
	// FamiliaritySamples caps the waypoints looked up per candidate.
	FamiliaritySamples = 25
	// FamiliarityRadiusMeters is how close a waypoint must be to an explored
	// point to count as familiar.
	FamiliarityRadiusMeters = 280
	// Zero asks the geo index for every point in the radius.
	familiarityLookupLimit = 0
)

// ExploredSet collects the GeoPoint ids referenced by the user's activities.
func ExploredSet(ctx context.Context, userID string, profiles ports.ProfileLoader) map[int64]struct{} {
	explored := make(map[int64]struct{})
	if userID == "" || profiles == nil {
		return explored
	}

	activities, err := profiles.LoadActivities(ctx, userID)
	if err != nil {
		obs.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("load activities failed; scoring without history")
		return explored
	}

	for _, a := range activities {
		for _, id := range a.PointIDs {
			explored[id] = struct{}{}
		}
	}
	return explored
}

// ScoreFamiliarity attaches a familiarity score in [0,1] to every candidate
// and truncates the list to MaxFinalists in its current order.
func ScoreFamiliarity(
	ctx context.Context,
	q domain.Query,
	candidates []domain.Candidate,
	profiles ports.ProfileLoader,
	index ports.GeoIndex,
	workers int,
) []domain.Candidate {
	if len(candidates) == 0 {
		return candidates
	}
	if workers < 1 {
		workers = 1
	}

	explored := ExploredSet(ctx, q.UserID, profiles)

	scored := make([]domain.Candidate, len(candidates))
	copy(scored, candidates)

	if len(explored) > 0 {
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range scored {
			g.Go(func() error {
				scored[i].FamiliarityScore = FamiliarityScore(ctx, scored[i].Waypoints, explored, index)
				return nil
			})
		}
		_ = g.Wait()
	}

	// Finalists keep the distance-trim order; the score only affects the
	// final preference ordering.
	if len(scored) > MaxFinalists {
		scored = scored[:MaxFinalists]
	}
	return scored
}

// FamiliarityScore is the share of sampled waypoints that lie within
// FamiliarityRadiusMeters of an explored point.
func FamiliarityScore(
	ctx context.Context,
	waypoints []domain.Coordinates,
	explored map[int64]struct{},
	index ports.GeoIndex,
) float64 {
	idx, sample := geo.SampleIndices(len(waypoints), FamiliaritySamples)
	if sample == 0 {
		return 0
	}

	matches := 0
	for _, i := range idx {
		w := waypoints[i]
		near, err := index.FindWithinRadius(ctx, w.Lat, w.Lon, FamiliarityRadiusMeters, familiarityLookupLimit)
		if err != nil {
			obs.Ctx(ctx).Warn().Err(err).Float64("lat", w.Lat).Float64("lng", w.Lon).Msg("radius lookup failed")
			continue
		}
		for _, p := range near {
			if _, ok := explored[p.ID]; ok {
				matches++
				break
			}
		}
	}

	return float64(matches) / float64(sample)
}
