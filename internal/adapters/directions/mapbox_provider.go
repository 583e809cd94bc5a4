package directions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/metrics"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrNoRoute is returned when the service answers but has no usable route.
var ErrNoRoute = errors.New("directions: no route")

// MapboxDirectionsProvider implements DirectionsProvider using the Mapbox
// Directions API.
//
// It coordinates:
//   - Client-side rate limiting towards the third-party quota
//   - Retry with exponential backoff for transient failures
//   - A circuit breaker that fails fast while the service is down
//
// The provider is safe for concurrent use.
type MapboxDirectionsProvider struct {
	session        *http.Client
	accessToken    string
	baseURL        string
	profile        string
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[ports.DirectionsResult]
	maxAttempts    int
	initialBackoff time.Duration
}

type Option func(*MapboxDirectionsProvider)

func WithBaseURL(u string) Option {
	return func(m *MapboxDirectionsProvider) { m.baseURL = strings.TrimRight(u, "/") }
}

func WithProfile(p string) Option {
	return func(m *MapboxDirectionsProvider) { m.profile = strings.Trim(p, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(m *MapboxDirectionsProvider) { m.session = c }
}

// WithRateLimit allows rps requests per second with a burst of one second.
func WithRateLimit(rps float64) Option {
	return func(m *MapboxDirectionsProvider) {
		burst := max(1, int(rps))
		m.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithRetry(attempts int, backoff time.Duration) Option {
	return func(m *MapboxDirectionsProvider) {
		m.maxAttempts = max(1, attempts)
		m.initialBackoff = backoff
	}
}

func NewMapboxDirectionsProvider(accessToken string, opts ...Option) (*MapboxDirectionsProvider, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("mapbox access token is empty")
	}

	provider := &MapboxDirectionsProvider{
		session:        &http.Client{Timeout: 10 * time.Second},
		accessToken:    accessToken,
		baseURL:        "https://api.mapbox.com",
		profile:        "mapbox/cycling",
		maxAttempts:    4,
		initialBackoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(provider)
	}
	provider.breaker = newBreaker("mapbox-directions")

	return provider, nil
}

type directionsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Legs     []struct {
			Steps []struct {
				Maneuver struct {
					Location []float64 `json:"location"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route asks the service for a cycling route through the waypoints.
func (m *MapboxDirectionsProvider) Route(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ ports.DirectionsResult, err error) {
	defer obs.Time(ctx, "mapbox.Route")(&err)

	if len(waypoints) < 2 || len(waypoints) > ports.MaxWaypoints {
		return ports.DirectionsResult{}, fmt.Errorf("route: need 2..%d waypoints, got %d", ports.MaxWaypoints, len(waypoints))
	}

	res, err := m.breaker.Execute(func() (ports.DirectionsResult, error) {
		return m.fetchRoute(ctx, waypoints)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.DirectionsRequests.WithLabelValues("rejected").Inc()
		} else {
			metrics.DirectionsRequests.WithLabelValues("failure").Inc()
		}
		return ports.DirectionsResult{}, fmt.Errorf("route: %w", err)
	}

	metrics.DirectionsRequests.WithLabelValues("success").Inc()
	return res, nil
}

func (m *MapboxDirectionsProvider) endpoint(waypoints []domain.Coordinates) string {
	parts := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		parts = append(parts,
			strconv.FormatFloat(w.Lon, 'f', 6, 64)+","+strconv.FormatFloat(w.Lat, 'f', 6, 64))
	}
	return fmt.Sprintf("%s/directions/v5/%s/%s", m.baseURL, m.profile, strings.Join(parts, ";"))
}

func (m *MapboxDirectionsProvider) fetchRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (ports.DirectionsResult, error) {
	endpoint := m.endpoint(waypoints)

	resp, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := m.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("steps", "true")
		q.Set("overview", "false")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	return decoded.toResult()
}

func (d directionsResponse) toResult() (ports.DirectionsResult, error) {
	if len(d.Routes) == 0 {
		return ports.DirectionsResult{}, fmt.Errorf("%w: empty routes (code=%q message=%q)", ErrNoRoute, d.Code, d.Message)
	}

	route := d.Routes[0]
	if len(route.Legs) == 0 {
		return ports.DirectionsResult{}, fmt.Errorf("%w: first route has no legs", ErrNoRoute)
	}

	waypoints := make([]domain.Coordinates, 0)
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			loc := step.Maneuver.Location
			if len(loc) != 2 {
				continue
			}
			waypoints = append(waypoints, domain.Coordinates{Lon: loc[0], Lat: loc[1]})
		}
	}

	return ports.DirectionsResult{
		DistanceMeters: route.Distance,
		Waypoints:      waypoints,
	}, nil
}
