package services

import (
	"context"
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/geo"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
)

// Upper bound on parts read per pool kind. Parts past the cap (in id order)
// are not considered; hitting it is logged.
const poolListLimit = 1000

// lowerBoundGrace is the share of the target distance a lower bound may
// exceed it by and still be kept.
const lowerBoundGrace = 0.1

// CandidatePool holds the routes and segments that survived filtering,
// annotated with their lower bound distance.
type CandidatePool struct {
	Routes   []*domain.RoutePart
	Segments []*domain.RoutePart
}

func (p CandidatePool) Len() int { return len(p.Routes) + len(p.Segments) }

// FilterCandidatePool reads recorded routes and segments that could belong in
// a route of the requested distance and applies the lower bound filter.
// Generated routes never feed back into the pool.
func FilterCandidatePool(
	ctx context.Context,
	q domain.Query,
	repo ports.RoutePartRepository,
) (_ CandidatePool, err error) {
	defer obs.Time(ctx, "pipeline.filter")(&err)

	routes, err := listInDistanceRange(ctx, q, repo, true)
	if err != nil {
		return CandidatePool{}, err
	}
	segments, err := listInDistanceRange(ctx, q, repo, false)
	if err != nil {
		return CandidatePool{}, err
	}

	return CandidatePool{
		Routes:   ApplyLowerBound(q, routes),
		Segments: ApplyLowerBound(q, segments),
	}, nil
}

func listInDistanceRange(
	ctx context.Context,
	q domain.Query,
	repo ports.RoutePartRepository,
	isRoute bool,
) ([]*domain.RoutePart, error) {
	criteria := ports.PartCriteria{
		MinDistance: q.TargetDistance / 5,
		MaxDistance: q.TargetDistance,
		IsRoute:     ports.Bool(isRoute),
		IsGenerated: ports.Bool(false),
	}

	parts, err := repo.ListParts(ctx, criteria, true, poolListLimit)
	if err != nil {
		return nil, fmt.Errorf("filter candidate pool: list parts is_route=%t: %w: %w", isRoute, ErrPersistence, err)
	}
	if len(parts) >= poolListLimit {
		obs.Ctx(ctx).Warn().
			Bool("is_route", isRoute).
			Int("limit", poolListLimit).
			Float64("target_distance", q.TargetDistance).
			Msg("candidate pool truncated at list limit")
	}

	return FilterByDistance(q.TargetDistance, parts), nil
}

// FilterByDistance keeps parts with target/5 < distance < target.
func FilterByDistance(target float64, parts []*domain.RoutePart) []*domain.RoutePart {
	out := make([]*domain.RoutePart, 0, len(parts))
	for _, p := range parts {
		if p.Distance > target/5 && p.Distance < target {
			out = append(out, p)
		}
	}
	return out
}

// ApplyLowerBound annotates each part with the shortest plausible round trip
// through it (its own distance plus straight lines from the query start to
// both endpoints) and drops parts that overshoot the target by more than the
// grace margin. Parts with fewer than two points are dropped.
func ApplyLowerBound(q domain.Query, parts []*domain.RoutePart) []*domain.RoutePart {
	out := make([]*domain.RoutePart, 0, len(parts))
	for _, p := range parts {
		first, last, ok := p.Endpoints()
		if !ok {
			continue
		}

		lb := p.Distance + geo.Haversine(q.Start, first) + geo.Haversine(q.Start, last)
		if lb-lowerBoundGrace*q.TargetDistance > q.TargetDistance {
			continue
		}

		annotated := *p
		annotated.LowerBoundDistance = lb
		out = append(out, &annotated)
	}
	return out
}
