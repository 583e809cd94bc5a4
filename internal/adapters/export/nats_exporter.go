package export

import (
	"context"
	"errors"
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/platform/metrics"
	"route-generation-service/internal/platform/obs"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// RouteCreatedEvent is published once per newly generated route.
type RouteCreatedEvent struct {
	RouteID     int64        `json:"route_id"`
	ExternalID  int64        `json:"external_id"`
	Title       string       `json:"title"`
	OwnerID     string       `json:"owner_id"`
	Distance    float64      `json:"distance"`
	PartIDs     []int64      `json:"part_ids"`
	Coordinates [][2]float64 `json:"coordinates"`
	CreatedAt   time.Time    `json:"created_at"`
}

func NewRouteCreatedEvent(r *domain.RoutePart) RouteCreatedEvent {
	coords := make([][2]float64, 0, len(r.Points))
	for _, p := range r.Points {
		coords = append(coords, p.Coordinates.LonLat())
	}
	return RouteCreatedEvent{
		RouteID:     r.ID,
		ExternalID:  r.ExternalID,
		Title:       r.Title,
		OwnerID:     r.OwnerID,
		Distance:    r.Distance,
		PartIDs:     r.PartIDs,
		Coordinates: coords,
		CreatedAt:   r.CreatedAt,
	}
}

// NATSExporter publishes RouteCreatedEvents to a subject. Publishing is
// buffered by the NATS client, so RouteCreated never waits on the exporter.
type NATSExporter struct {
	conn    *nats.Conn
	subject string
}

func NewNATSExporter(conn *nats.Conn, subject string) (*NATSExporter, error) {
	if conn == nil {
		return nil, errors.New("nats exporter: connection is nil")
	}
	if subject == "" {
		return nil, errors.New("nats exporter: subject is empty")
	}
	return &NATSExporter{conn: conn, subject: subject}, nil
}

// Connect dials the NATS server with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("route-generation-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %q: %w", url, err)
	}
	return conn, nil
}

func (e *NATSExporter) RouteCreated(ctx context.Context, route *domain.RoutePart) {
	if err := e.publish(route); err != nil {
		metrics.ExportFailures.Inc()
		obs.Ctx(ctx).Warn().Err(err).Int64("route_id", route.ID).Msg("route export failed")
	}
}

func (e *NATSExporter) publish(route *domain.RoutePart) error {
	payload, err := json.Marshal(NewRouteCreatedEvent(route))
	if err != nil {
		return fmt.Errorf("encode route event: %w", err)
	}
	if err := e.conn.Publish(e.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", e.subject, err)
	}
	return nil
}
