package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"route-generation-service/internal/adapters/cache"
	"route-generation-service/internal/adapters/directions"
	"route-generation-service/internal/adapters/export"
	"route-generation-service/internal/adapters/repositories"
	"route-generation-service/internal/api"
	"route-generation-service/internal/config"
	"route-generation-service/internal/platform/db"
	"route-generation-service/internal/platform/obs"
	"route-generation-service/internal/ports"
	"route-generation-service/internal/services"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, cache, Mapbox, NATS) behind ports and starts the HTTP server.
func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		obs.Setup("info", "json", nil)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	obs.Setup(cfg.LogLevel, cfg.LogFormat, nil)
	if !dotenv {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repositories.InitSchema(ctx, pool); err != nil {
		return err
	}
	store := repositories.NewPostgresStore(pool)

	mapbox, err := directions.NewMapboxDirectionsProvider(cfg.MapboxToken,
		directions.WithBaseURL(cfg.DirectionsBaseURL),
		directions.WithProfile(cfg.DirectionsProfile),
		directions.WithRateLimit(cfg.DirectionsRPS),
	)
	if err != nil {
		return err
	}

	// Directions results are cached persistently to avoid repeated paid calls.
	directionsCache, closeCache, err := openDirectionsCache(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer closeCache()

	var provider ports.DirectionsProvider = mapbox
	if directionsCache != nil {
		provider = directions.NewCachedDirectionsProvider(mapbox, directionsCache, cfg.DirectionsProfile)
	}

	var exporter ports.RouteExporter = export.LogExporter{}
	if cfg.NATSURL != "" {
		conn, err := export.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer conn.Drain()

		if exporter, err = export.NewNATSExporter(conn, cfg.ExportSubject); err != nil {
			return err
		}
	}

	generator := &services.Generator{
		Parts:      store,
		Index:      store,
		Profiles:   store,
		Searches:   store,
		Directions: provider,
		Exporter:   exporter,
		Workers:    cfg.Workers,
	}

	router := api.NewRouter(api.Deps{
		Generator:    generator,
		Parts:        store,
		Searches:     store,
		DefaultStart: cfg.DefaultStart,
		Ready:        pool.Ping,
	})

	// Timeouts are tuned for cold-cache searches (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDirectionsCache(ctx context.Context, cfg config.Config, pool db.Querier) (ports.DirectionsCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect redis %q: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisDirectionsCache(client, cfg.CacheTTL), func() { _ = client.Close() }, nil

	case "sqlite":
		sqlite, err := sql.Open("sqlite", cfg.SqlitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite cache %q: %w", cfg.SqlitePath, err)
		}
		if err := cache.InitSqliteSchema(ctx, sqlite); err != nil {
			_ = sqlite.Close()
			return nil, noop, err
		}
		return cache.NewSqliteDirectionsCache(sqlite, cfg.CacheTTL), func() { _ = sqlite.Close() }, nil

	case "postgres":
		return cache.NewPostgresDirectionsCache(pool, cfg.CacheTTL), noop, nil

	default:
		return nil, noop, nil
	}
}
