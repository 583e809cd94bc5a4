package repositories

import (
	"context"
	"os"
	"path/filepath"
	"route-generation-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpusJSON = `{
  "parts": [
    {"title": " River loop ", "distance": 4500, "is_route": true, "points": [[6.96, 49.2613], [6.97, 49.2613], [6.96, 49.2585]]},
    {"title": "Park spur", "distance": 1800, "is_route": false, "points": [[6.964, 49.236], [6.98, 49.239]]}
  ],
  "activities": [
    {"user_id": "u1", "points": [[6.96, 49.2613]]}
  ]
}`

func writeCorpus(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSeedFromJSON(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SeedFromJSON(ctx, s, writeCorpus(t, corpusJSON)))

	routes, err := s.ListParts(ctx, ports.PartCriteria{IsRoute: ports.Bool(true)}, true, 0)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "River loop", routes[0].Title)
	assert.Len(t, routes[0].Points, 3)
	assert.Equal(t, 49.2585, routes[0].Points[2].Coordinates.Lat)

	segments, err := s.ListParts(ctx, ports.PartCriteria{IsRoute: ports.Bool(false)}, false, 0)
	require.NoError(t, err)
	assert.Len(t, segments, 1)

	acts, err := s.LoadActivities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Len(t, acts[0].PointIDs, 1)
}

func TestSeedRejectsInvalidCorpus(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"parts": [`},
		{"non positive distance", `{"parts": [{"distance": 0, "points": [[1,2],[3,4]]}]}`},
		{"single point", `{"parts": [{"distance": 10, "points": [[1,2]]}]}`},
		{"anonymous activity", `{"activities": [{"user_id": " ", "points": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			err := SeedFromJSON(context.Background(), s, writeCorpus(t, tt.body))
			require.Error(t, err)

			parts, _ := s.ListParts(context.Background(), ports.PartCriteria{}, false, 0)
			assert.Empty(t, parts)
		})
	}
}

func TestSeedFromJSONMissingFile(t *testing.T) {
	err := SeedFromJSON(context.Background(), NewMemoryStore(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
