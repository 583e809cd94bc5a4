package services

import (
	"fmt"
	"route-generation-service/internal/domain"
	"strconv"
	"strings"
)

const (
	DefaultDistance   = 5000.0
	DefaultDifficulty = "advanced"
)

// SearchParams are the raw request parameters of a search.
// Coordinates are "lat,lng" strings.
type SearchParams struct {
	Distance   string
	Preference string
	Duration   string
	Difficulty string
	Start      string
	End        string
	Radius     string
}

// BuildQuery validates raw parameters and fills defaults: distance 5000 m,
// preference discover, difficulty advanced, end = start, radius = distance/2.
// An empty start falls back to defaultStart.
func BuildQuery(p SearchParams, userID, defaultStart string) (domain.Query, error) {
	q := domain.Query{
		UserID:     strings.TrimSpace(userID),
		Difficulty: strings.TrimSpace(p.Difficulty),
	}
	if q.Difficulty == "" {
		q.Difficulty = DefaultDifficulty
	}

	var err error
	if q.TargetDistance, err = parsePositive("distance", p.Distance, DefaultDistance); err != nil {
		return domain.Query{}, err
	}
	if q.Duration, err = parsePositive("duration", p.Duration, 0); err != nil {
		return domain.Query{}, err
	}
	if q.Radius, err = parsePositive("radius", p.Radius, q.TargetDistance/2); err != nil {
		return domain.Query{}, err
	}

	if q.Preference, err = domain.ParsePreference(p.Preference); err != nil {
		return domain.Query{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	start := strings.TrimSpace(p.Start)
	if start == "" {
		start = strings.TrimSpace(defaultStart)
	}
	if start == "" {
		return domain.Query{}, fmt.Errorf("%w: start is required", ErrInvalidQuery)
	}
	if q.Start, err = ParseLatLng(start); err != nil {
		return domain.Query{}, fmt.Errorf("%w: start: %w", ErrInvalidQuery, err)
	}

	q.End = q.Start
	if end := strings.TrimSpace(p.End); end != "" {
		if q.End, err = ParseLatLng(end); err != nil {
			return domain.Query{}, fmt.Errorf("%w: end: %w", ErrInvalidQuery, err)
		}
	}

	return q, nil
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (domain.Coordinates, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("expected \"lat,lng\", got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("latitude %q: %w", latStr, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("longitude %q: %w", lngStr, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Coordinates{}, fmt.Errorf("coordinate %q out of range", s)
	}

	return domain.Coordinates{Lon: lng, Lat: lat}, nil
}

func parsePositive(name, raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidQuery, name, raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidQuery, name)
	}
	return v, nil
}
