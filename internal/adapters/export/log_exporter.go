package export

import (
	"context"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/obs"
)

// LogExporter records new routes in the log when no broker is configured.
type LogExporter struct{}

func (LogExporter) RouteCreated(ctx context.Context, route *domain.RoutePart) {
	obs.Ctx(ctx).Info().
		Int64("route_id", route.ID).
		Int64("external_id", route.ExternalID).
		Float64("distance", route.Distance).
		Int("points", len(route.Points)).
		Msg("generated route created")
}
