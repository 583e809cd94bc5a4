package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routes")
	t.Setenv("MAPBOX_ACCESS_TOKEN", "tok")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mapbox/cycling", cfg.DirectionsProfile)
	assert.Equal(t, "none", cfg.CacheBackend)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5.0, cfg.DirectionsRPS)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAPBOX_ACCESS_TOKEN", "tok")

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routes")
	t.Setenv("MAPBOX_ACCESS_TOKEN", "tok")
	t.Setenv("WORKERS", "many")

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")
}

func TestValidateCacheBackend(t *testing.T) {
	cfg := Config{
		DatabaseURL:   "postgres://localhost/routes",
		MapboxToken:   "tok",
		Workers:       1,
		DirectionsRPS: 1,
		CacheBackend:  "memcached",
	}
	require.Error(t, cfg.Validate())

	for _, backend := range []string{"none", "redis", "sqlite", "postgres"} {
		cfg.CacheBackend = backend
		require.NoError(t, cfg.Validate(), backend)
	}
}
