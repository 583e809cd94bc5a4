package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the route generation service.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	Port        string
	DatabaseURL string
	SeedPath    string

	LogLevel  string
	LogFormat string

	MapboxToken       string
	DirectionsBaseURL string
	DirectionsProfile string
	DirectionsRPS     float64

	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	SqlitePath    string

	NATSURL       string
	ExportSubject string

	Workers      int
	DefaultStart string
}

// Load reads .env (when present) and the environment.
// It reports whether a .env file was found so the caller can log it.
func Load() (Config, bool, error) {
	dotenv := godotenv.Load() == nil

	cfg := Config{
		Port:              Get("PORT", "8080"),
		DatabaseURL:       Get("DATABASE_URL", ""),
		SeedPath:          Get("SEED_PATH", "data/seeds/corpus.json"),
		LogLevel:          Get("LOG_LEVEL", "info"),
		LogFormat:         Get("LOG_FORMAT", "json"),
		MapboxToken:       Get("MAPBOX_ACCESS_TOKEN", ""),
		DirectionsBaseURL: Get("DIRECTIONS_BASE_URL", "https://api.mapbox.com"),
		DirectionsProfile: Get("DIRECTIONS_PROFILE", "mapbox/cycling"),
		CacheBackend:      strings.ToLower(Get("CACHE_BACKEND", "none")),
		RedisAddr:         Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     Get("REDIS_PASSWORD", ""),
		SqlitePath:        Get("SQLITE_PATH", "data/directions_cache.db"),
		NATSURL:           Get("NATS_URL", ""),
		ExportSubject:     Get("EXPORT_SUBJECT", "routes.generated"),
		DefaultStart:      Get("DEFAULT_START", ""),
	}

	var err error
	if cfg.DirectionsRPS, err = GetFloat("DIRECTIONS_RPS", 5); err != nil {
		return Config{}, dotenv, err
	}
	if cfg.Workers, err = GetInt("WORKERS", 4); err != nil {
		return Config{}, dotenv, err
	}
	if cfg.CacheTTL, err = GetDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, dotenv, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, dotenv, err
	}

	return cfg, dotenv, nil
}

// Validate checks settings that have no usable fallback.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if strings.TrimSpace(c.MapboxToken) == "" {
		return fmt.Errorf("config: MAPBOX_ACCESS_TOKEN is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: WORKERS must be positive, got %d", c.Workers)
	}
	if c.DirectionsRPS <= 0 {
		return fmt.Errorf("config: DIRECTIONS_RPS must be positive, got %v", c.DirectionsRPS)
	}
	switch c.CacheBackend {
	case "none", "redis", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	return nil
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
