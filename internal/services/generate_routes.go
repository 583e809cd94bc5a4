package services

import (
	"context"
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/metrics"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"time"
)

// Generator runs the route generation pipeline:
// filter, combine, reduce, synthesize, score, materialize, assemble.
// Each stage is a function of the query and the previous stage's output.
type Generator struct {
	Parts      ports.RoutePartRepository
	Index      ports.GeoIndex
	Profiles   ports.ProfileLoader
	Searches   ports.SearchResultRepository
	Directions ports.DirectionsProvider
	Exporter   ports.RouteExporter

	// Workers bounds concurrent directions calls and familiarity lookups.
	Workers int
	Now     func() time.Time
}

// Generate runs one search to completion. The caller always receives a
// SearchResult, possibly without routes, unless a store write fails or ctx is
// cancelled.
func (g *Generator) Generate(ctx context.Context, q domain.Query) (_ *domain.SearchResult, err error) {
	defer obs.Time(ctx, "pipeline.generate")(&err)
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.Searches.WithLabelValues(string(q.Preference), status).Inc()
	}()

	if q.TargetDistance <= 0 {
		return nil, fmt.Errorf("generate routes: target distance %v: %w", q.TargetDistance, ErrInvalidQuery)
	}

	var pool CandidatePool
	if err := observeStage("filter", func() (int, error) {
		var err error
		pool, err = FilterCandidatePool(ctx, q, g.Parts)
		return pool.Len(), err
	}); err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	var combos []domain.Combo
	_ = observeStage("combine", func() (int, error) {
		combos = ReduceCombos(q, BuildCombos(pool))
		return len(combos), nil
	})

	var candidates []domain.Candidate
	_ = observeStage("synthesize", func() (int, error) {
		candidates = SynthesizeCandidates(ctx, q, combos, g.Directions, g.Workers)
		return len(candidates), nil
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	var finalists []domain.Candidate
	_ = observeStage("score", func() (int, error) {
		finalists = ScoreFamiliarity(ctx, q, candidates, g.Profiles, g.Index, g.Workers)
		return len(finalists), nil
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	var routes []*domain.RoutePart
	if err := observeStage("materialize", func() (int, error) {
		var err error
		routes, err = MaterializeRoutes(ctx, q, finalists, g.Parts, g.Exporter)
		return len(routes), err
	}); err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	var result *domain.SearchResult
	if err := observeStage("assemble", func() (int, error) {
		var err error
		result, err = AssembleResult(ctx, q, routes, g.Searches, g.now())
		return len(routes), err
	}); err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	obs.Ctx(ctx).Info().
		Str("search_id", result.ID).
		Float64("distance", q.TargetDistance).
		Str("preference", string(q.Preference)).
		Int("pool", pool.Len()).
		Int("combos", len(combos)).
		Int("candidates", len(candidates)).
		Int("routes", len(result.Routes)).
		Msg("search completed")

	return result, nil
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

func observeStage(name string, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.StageOutput.WithLabelValues(name).Observe(float64(n))
	}
	return err
}
