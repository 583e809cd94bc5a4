package cache

import (
	"fmt"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/ports"

	json "github.com/goccy/go-json"
)

type cachedRoute struct {
	Distance  float64      `json:"distance"`
	Waypoints [][2]float64 `json:"waypoints"`
}

func encodeResult(r ports.DirectionsResult) ([]byte, error) {
	c := cachedRoute{Distance: r.DistanceMeters, Waypoints: make([][2]float64, 0, len(r.Waypoints))}
	for _, w := range r.Waypoints {
		c.Waypoints = append(c.Waypoints, w.LonLat())
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cached route: %w", err)
	}
	return b, nil
}

func decodeResult(b []byte) (ports.DirectionsResult, error) {
	var c cachedRoute
	if err := json.Unmarshal(b, &c); err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("decode cached route: %w", err)
	}
	out := ports.DirectionsResult{DistanceMeters: c.Distance, Waypoints: make([]domain.Coordinates, 0, len(c.Waypoints))}
	for _, w := range c.Waypoints {
		out.Waypoints = append(out.Waypoints, domain.Coordinates{Lon: w[0], Lat: w[1]})
	}
	return out, nil
}
