package services

import (
	"context"
	"errors"
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/metrics"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"strconv"
)

// GeneratedTitle is the title given to a generated route of distance meters.
func GeneratedTitle(distance float64) string {
	return "New Route (" + formatKm(distance) + " km)"
}

func generatedDescription(q domain.Query, c domain.Candidate) string {
	return fmt.Sprintf(
		"Round trip of %s km generated for a %s km request from %d recorded part(s).",
		formatKm(c.Distance), formatKm(q.TargetDistance), len(c.Parts),
	)
}

func formatKm(meters float64) string {
	return strconv.FormatFloat(meters/1000, 'f', 1, 64)
}

// MaterializeRoutes persists the finalists as generated routes, reusing the
// record of an earlier identical search when one exists. Output keeps
// finalist order; every route carries its candidate's familiarity score.
//
// A store failure aborts the whole call. Routes committed before the failure
// stay persisted.
func MaterializeRoutes(
	ctx context.Context,
	q domain.Query,
	finalists []domain.Candidate,
	repo ports.RoutePartRepository,
	exporter ports.RouteExporter,
) (_ []*domain.RoutePart, err error) {
	defer obs.Time(ctx, "pipeline.materialize")(&err)

	out := make([]*domain.RoutePart, 0, len(finalists))
	for i, c := range finalists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		route, err := materializeOne(ctx, q, c, repo, exporter)
		if err != nil {
			return nil, fmt.Errorf("materialize routes: finalist %d: %w: %w", i, ErrPersistence, err)
		}
		out = append(out, route)
	}
	return out, nil
}

func materializeOne(
	ctx context.Context,
	q domain.Query,
	c domain.Candidate,
	repo ports.RoutePartRepository,
	exporter ports.RouteExporter,
) (*domain.RoutePart, error) {
	title := GeneratedTitle(c.Distance)
	externalID := MakeHash(c.Distance, q.Start, q.End, title)

	existing, err := repo.LoadPart(ctx, ports.PartCriteria{
		ExternalID:  ports.Int64(externalID),
		IsGenerated: ports.Bool(true),
	})
	switch {
	case err == nil:
		return reuseOrComplete(ctx, externalID, existing, c, repo, exporter)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, fmt.Errorf("load generated route %d: %w", externalID, err)
	}

	route, created, err := repo.CreateGeneratedPart(ctx, &domain.RoutePart{
		ExternalID:  externalID,
		Title:       title,
		Description: generatedDescription(q, c),
		OwnerID:     q.UserID,
		Distance:    c.Distance,
		IsRoute:     true,
		IsGenerated: true,
		PartIDs:     c.PartIDs(),
	})
	if err != nil {
		return nil, fmt.Errorf("create generated route %d: %w", externalID, err)
	}
	// A concurrent identical search won the insert.
	if !created {
		return reuseOrComplete(ctx, externalID, route, c, repo, exporter)
	}

	return attachPoints(ctx, externalID, route, c, repo, exporter)
}

// reuseOrComplete returns an existing generated route. A record left without
// points by a failed earlier run is completed instead of served empty.
func reuseOrComplete(
	ctx context.Context,
	externalID int64,
	route *domain.RoutePart,
	c domain.Candidate,
	repo ports.RoutePartRepository,
	exporter ports.RouteExporter,
) (*domain.RoutePart, error) {
	if len(route.Points) == 0 && len(c.Waypoints) > 0 {
		obs.Ctx(ctx).Warn().Int64("route_id", route.ID).Int64("external_id", externalID).
			Msg("completing generated route without points")
		return attachPoints(ctx, externalID, route, c, repo, exporter)
	}
	return reuse(route, c), nil
}

func attachPoints(
	ctx context.Context,
	externalID int64,
	route *domain.RoutePart,
	c domain.Candidate,
	repo ports.RoutePartRepository,
	exporter ports.RouteExporter,
) (*domain.RoutePart, error) {
	points := make([]domain.GeoPoint, 0, len(c.Waypoints))
	for _, w := range c.Waypoints {
		gp, err := repo.SaveGeoPoint(ctx, &domain.GeoPoint{
			Coordinates: w,
			RouteIDs:    []int64{route.ID},
		})
		if err != nil {
			return nil, fmt.Errorf("save point of route %d: %w", route.ID, err)
		}
		points = append(points, *gp)
	}

	route.Points = points
	route, err := repo.SavePart(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("attach points to route %d: %w", externalID, err)
	}
	route.FamiliarityScore = c.FamiliarityScore

	metrics.MaterializedRoutes.WithLabelValues("created").Inc()
	if exporter != nil {
		exporter.RouteCreated(ctx, route)
	}

	return route, nil
}

func reuse(route *domain.RoutePart, c domain.Candidate) *domain.RoutePart {
	metrics.MaterializedRoutes.WithLabelValues("reused").Inc()
	route.FamiliarityScore = c.FamiliarityScore
	return route
}
