package services

import "route-generation-service/internal/domain"

// BuildCombos wraps every pooled part into a single-part combo, routes first.
func BuildCombos(pool CandidatePool) []domain.Combo {
	combos := make([]domain.Combo, 0, pool.Len())
	for _, p := range pool.Routes {
		combos = append(combos, domain.NewCombo(p))
	}
	for _, p := range pool.Segments {
		combos = append(combos, domain.NewCombo(p))
	}
	return combos
}

// ReduceCombos keeps the MaxCombos combos whose lower bound is closest to the
// target distance.
func ReduceCombos(q domain.Query, combos []domain.Combo) []domain.Combo {
	return SymmetricTrim(combos, func(c domain.Combo) float64 {
		return c.LowerBoundDistance
	}, q.TargetDistance, MaxCombos)
}
