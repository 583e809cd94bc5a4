package domain

import (
	"fmt"
	"strings"
	"time"
)

// Preference selects how generated routes are ordered in a search result.
type Preference string

const (
	PreferenceDiscover Preference = "discover"
	PreferenceDistance Preference = "distance"
	PreferenceBalanced Preference = "balanced"
)

// ParsePreference maps the raw value to a Preference. Empty selects discover.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PreferenceDiscover, nil
	case PreferenceDiscover, PreferenceDistance, PreferenceBalanced:
		return p, nil
	default:
		return "", fmt.Errorf("unknown preference %q", s)
	}
}

// Query holds the parameters of one search request. It is not modified once
// the pipeline starts.
type Query struct {
	Preference     Preference
	TargetDistance float64
	Radius         float64
	Start          Coordinates
	End            Coordinates
	UserID         string
	Duration       float64
	Difficulty     string
}

// SearchResult records one pipeline run. Routes and FamiliarityScores are
// index-aligned and ordered by the query preference.
type SearchResult struct {
	ID                string
	UserID            string
	Distance          float64
	Preference        Preference
	Routes            []*RoutePart
	FamiliarityScores []float64
	CreatedAt         time.Time
}

// Activity is a recorded ride of a user, reduced to the GeoPoints it touched.
type Activity struct {
	ID       int64
	UserID   string
	PointIDs []int64
}
