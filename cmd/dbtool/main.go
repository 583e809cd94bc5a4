package main

import (
	"context"
	"flag"
	"os"
	"route-generation-service/internal/adapters/repositories"
	"route-generation-service/internal/config"
	"route-generation-service/internal/platform/db"
	"route-generation-service/internal/platform/obs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	seedOnly := flag.Bool("seed-only", false, "skip schema initialization")
	flag.Parse()

	obs.Setup(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "console"), nil)

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()

	if !*seedOnly {
		log.Info().Msg("Initializing database schema...")
		if err := repositories.InitSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("schema initialization failed")
		}
		log.Info().Msg("Schema ready.")
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/corpus.json")
	log.Info().Str("path", seedPath).Msg("Seeding database...")
	if err := repositories.SeedFromJSON(ctx, repositories.NewPostgresStore(pool), seedPath); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("Seeding complete.")
}
