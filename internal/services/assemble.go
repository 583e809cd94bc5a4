package services

import (
	"cmp"
	"context"
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"slices"
	"time"
)

// OrderRoutes returns routes ordered for the preference:
// discover by descending familiarity, distance by descending distance, and
// balanced with the blended comparator below. The input is not modified.
func OrderRoutes(pref domain.Preference, routes []*domain.RoutePart) []*domain.RoutePart {
	ordered := slices.Clone(routes)

	switch pref {
	case domain.PreferenceDiscover:
		slices.SortStableFunc(ordered, func(a, b *domain.RoutePart) int {
			return cmp.Compare(b.FamiliarityScore, a.FamiliarityScore)
		})
	case domain.PreferenceDistance:
		slices.SortStableFunc(ordered, func(a, b *domain.RoutePart) int {
			return cmp.Compare(b.Distance, a.Distance)
		})
	default:
		slices.SortStableFunc(ordered, balancedCompare)
	}

	return ordered
}

// balancedCompare is not a strict weak ordering; the formula is kept as the
// product defines it and yields a deterministic order for a given input.
func balancedCompare(a, b *domain.RoutePart) int {
	v := b.Distance + (1-b.FamiliarityScore)*a.Distance - a.Distance + (1-a.FamiliarityScore)*b.Distance
	return cmp.Compare(v, 0)
}

// AssembleResult orders the generated routes and persists the search result.
func AssembleResult(
	ctx context.Context,
	q domain.Query,
	routes []*domain.RoutePart,
	repo ports.SearchResultRepository,
	now time.Time,
) (_ *domain.SearchResult, err error) {
	defer obs.Time(ctx, "pipeline.assemble")(&err)

	ordered := OrderRoutes(q.Preference, routes)
	scores := make([]float64, 0, len(ordered))
	for _, r := range ordered {
		scores = append(scores, r.FamiliarityScore)
	}

	result, err := repo.SaveSearchResult(ctx, &domain.SearchResult{
		UserID:            q.UserID,
		Distance:          q.TargetDistance,
		Preference:        q.Preference,
		Routes:            ordered,
		FamiliarityScores: scores,
		CreatedAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble result: save search result: %w: %w", ErrPersistence, err)
	}
	return result, nil
}
