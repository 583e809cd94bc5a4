package directions

import (
	"context"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/metrics"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// CachedDirectionsProvider serves repeated waypoint lists from a persistent
// cache before calling the wrapped provider. Cache failures are logged and
// never fail a request.
type CachedDirectionsProvider struct {
	next      ports.DirectionsProvider
	cache     ports.DirectionsCache
	namespace string
}

func NewCachedDirectionsProvider(next ports.DirectionsProvider, cache ports.DirectionsCache, namespace string) *CachedDirectionsProvider {
	return &CachedDirectionsProvider{next: next, cache: cache, namespace: namespace}
}

// CacheKey fingerprints the waypoint list at 1e-6 degree resolution.
func CacheKey(namespace string, waypoints []domain.Coordinates) string {
	d := xxhash.New()
	_, _ = d.WriteString(namespace)
	for _, w := range waypoints {
		_, _ = d.WriteString("|")
		_, _ = d.WriteString(strconv.FormatFloat(w.Lon, 'f', 6, 64))
		_, _ = d.WriteString(",")
		_, _ = d.WriteString(strconv.FormatFloat(w.Lat, 'f', 6, 64))
	}
	return namespace + ":" + strconv.FormatUint(d.Sum64(), 16) + ":" + strconv.Itoa(len(waypoints))
}

func (c *CachedDirectionsProvider) Route(ctx context.Context, waypoints []domain.Coordinates) (ports.DirectionsResult, error) {
	key := CacheKey(c.namespace, waypoints)
	logger := obs.Ctx(ctx)

	if res, ok, err := c.cache.Get(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("directions cache read failed")
	} else if ok {
		metrics.DirectionsRequests.WithLabelValues("cache_hit").Inc()
		return res, nil
	}

	res, err := c.next.Route(ctx, waypoints)
	if err != nil {
		return ports.DirectionsResult{}, err
	}

	if err := c.cache.Put(ctx, key, res); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("directions cache write failed")
	}
	return res, nil
}
