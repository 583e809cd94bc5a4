package repositories

import (
	"context"
	"fmt"
	"os"
	"route-generation-service/internal/domain"
	"strings"

	json "github.com/goccy/go-json"
)

// CorpusWriter is the subset of a store needed to seed a corpus.
type CorpusWriter interface {
	SaveGeoPoint(ctx context.Context, point *domain.GeoPoint) (*domain.GeoPoint, error)
	SavePart(ctx context.Context, part *domain.RoutePart) (*domain.RoutePart, error)
	SaveActivity(ctx context.Context, a domain.Activity) (*domain.Activity, error)
}

type PartSeed struct {
	Title    string       `json:"title"`
	Distance float64      `json:"distance"`
	IsRoute  bool         `json:"is_route"`
	Points   [][2]float64 `json:"points"`
}

type ActivitySeed struct {
	UserID string       `json:"user_id"`
	Points [][2]float64 `json:"points"`
}

// CorpusSeed is the JSON layout of a seed file. Points are [lng, lat].
type CorpusSeed struct {
	Parts      []PartSeed     `json:"parts"`
	Activities []ActivitySeed `json:"activities"`
}

// Populate the store with routes, segments and activities from a JSON file.
func SeedFromJSON(ctx context.Context, w CorpusWriter, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed corpus: read %q: %w", jsonPath, err)
	}

	var data CorpusSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed corpus: parse json: %w", err)
	}

	return Seed(ctx, w, data)
}

// Seed validates and writes a corpus.
func Seed(ctx context.Context, w CorpusWriter, data CorpusSeed) error {
	for i, item := range data.Parts {
		if item.Distance <= 0 {
			return fmt.Errorf("seed corpus: part at index %d: distance must be positive", i+1)
		}
		if len(item.Points) < 2 {
			return fmt.Errorf("seed corpus: part at index %d: needs at least 2 points", i+1)
		}
	}
	for i, item := range data.Activities {
		if strings.TrimSpace(item.UserID) == "" {
			return fmt.Errorf("seed corpus: activity at index %d: user_id cannot be empty", i+1)
		}
	}

	for i, item := range data.Parts {
		points, err := savePoints(ctx, w, item.Points)
		if err != nil {
			return fmt.Errorf("seed corpus: part %d: %w", i+1, err)
		}

		part := &domain.RoutePart{
			Title:    strings.TrimSpace(item.Title),
			Distance: item.Distance,
			IsRoute:  item.IsRoute,
			Points:   points,
		}
		if _, err := w.SavePart(ctx, part); err != nil {
			return fmt.Errorf("seed corpus: part %d: %w", i+1, err)
		}
	}

	for i, item := range data.Activities {
		points, err := savePoints(ctx, w, item.Points)
		if err != nil {
			return fmt.Errorf("seed corpus: activity %d: %w", i+1, err)
		}

		ids := make([]int64, 0, len(points))
		for _, p := range points {
			ids = append(ids, p.ID)
		}
		if _, err := w.SaveActivity(ctx, domain.Activity{UserID: strings.TrimSpace(item.UserID), PointIDs: ids}); err != nil {
			return fmt.Errorf("seed corpus: activity %d: %w", i+1, err)
		}
	}

	return nil
}

func savePoints(ctx context.Context, w CorpusWriter, raw [][2]float64) ([]domain.GeoPoint, error) {
	points := make([]domain.GeoPoint, 0, len(raw))
	for _, c := range raw {
		gp, err := w.SaveGeoPoint(ctx, &domain.GeoPoint{Coordinates: domain.Coordinates{Lon: c[0], Lat: c[1]}})
		if err != nil {
			return nil, err
		}
		points = append(points, *gp)
	}
	return points, nil
}
