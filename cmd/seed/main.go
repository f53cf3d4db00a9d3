// Package main loads dictionary content files into the database.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/database"
	"github.com/doodlechef/doodlechef/internal/dictionary"
)

func main() {
	contentDir := flag.String("content", "content", "directory holding the dictionary content files")
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "doodlechef-seed").
		Logger()

	// Best effort; environment variables win.
	_ = godotenv.Load()

	ctx := context.Background()

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, dbConfig); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	seeder := dictionary.NewSeeder(dictionary.NewPostgresRepository(pool), log)
	result, err := seeder.SeedFromDir(ctx, *contentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	log.Info().
		Int("items", result.Items).
		Int("presets", result.Presets).
		Msg("seeding finished")
}
