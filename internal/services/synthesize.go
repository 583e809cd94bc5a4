package services

import (
	"context"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/geo"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// ComboWaypoints builds the closed round trip for a combo: the query start,
// every point of every part in order, and the start again.
func ComboWaypoints(q domain.Query, c domain.Combo) []domain.Coordinates {
	pts := c.Points()
	out := make([]domain.Coordinates, 0, len(pts)+2)
	out = append(out, q.Start)
	out = append(out, pts...)
	out = append(out, q.Start)
	return out
}

// SynthesizeCandidates routes every combo through the directions provider and
// keeps the MaxCandidates candidates closest to the target distance.
//
// Calls run on at most workers goroutines. A failed call only loses its own
// combo; results are collected by combo index so completion order never
// affects the outcome.
func SynthesizeCandidates(
	ctx context.Context,
	q domain.Query,
	combos []domain.Combo,
	provider ports.DirectionsProvider,
	workers int,
) []domain.Candidate {
	if workers < 1 {
		workers = 1
	}

	results := make([]domain.Candidate, len(combos))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range combos {
		g.Go(func() error {
			results[i] = synthesizeOne(ctx, q, c, provider)
			return nil
		})
	}
	_ = g.Wait()

	routed := make([]domain.Candidate, 0, len(results))
	for _, c := range results {
		if c.Distance > 0 {
			routed = append(routed, c)
		}
	}

	return SymmetricTrim(routed, func(c domain.Candidate) float64 {
		return c.Distance
	}, q.TargetDistance, MaxCandidates)
}

func synthesizeOne(
	ctx context.Context,
	q domain.Query,
	c domain.Combo,
	provider ports.DirectionsProvider,
) domain.Candidate {
	waypoints := geo.Downsample(ComboWaypoints(q, c), ports.MaxWaypoints)

	res, err := provider.Route(ctx, waypoints)
	if err != nil {
		obs.Ctx(ctx).Warn().
			Err(err).
			Int("waypoints", len(waypoints)).
			Int("parts", len(c.Parts)).
			Msg("directions request failed; skipping combo")
		return domain.Candidate{}
	}

	return domain.Candidate{
		Distance:  res.DistanceMeters,
		Waypoints: res.Waypoints,
		Parts:     c.Parts,
	}
}
