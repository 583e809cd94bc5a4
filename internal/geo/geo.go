// Package geo contains the geometric helpers of the route pipeline.
package geo

import (
	"math"

	"route-generation-service/internal/domain"
)

// EarthRadiusMeters is the mean earth radius used for great-circle distances.
const EarthRadiusMeters = 6371e3

// Haversine returns the great-circle distance in meters between a and b.
func Haversine(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Downsample reduces waypoints to at most limit entries. It keeps index 0,
// every stride-th index and always the final index, with
// stride = ceil(n / (limit-2)).
func Downsample(waypoints []domain.Coordinates, limit int) []domain.Coordinates {
	n := len(waypoints)
	if n <= limit || limit < 3 {
		return waypoints
	}

	stride := int(math.Ceil(float64(n) / float64(limit-2)))
	out := make([]domain.Coordinates, 0, limit)
	for i := 0; i < n; i += stride {
		out = append(out, waypoints[i])
	}
	if (n-1)%stride != 0 {
		out = append(out, waypoints[n-1])
	}
	return out
}

// SampleIndices returns the indices visited when sampling n waypoints at most
// max times: stride = ceil(n / min(max, n)), starting at 0.
// The second return value is the sample count the score is divided by.
func SampleIndices(n, max int) ([]int, int) {
	if n <= 0 || max <= 0 {
		return nil, 0
	}
	sample := min(max, n)
	stride := int(math.Ceil(float64(n) / float64(sample)))

	idx := make([]int, 0, sample)
	for i := 0; i < n; i += stride {
		idx = append(idx, i)
	}
	return idx, sample
}
