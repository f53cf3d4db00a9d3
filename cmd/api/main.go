// Package main provides the entrypoint for the DoodleChef API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api"
	"github.com/doodlechef/doodlechef/internal/api/middleware"
	"github.com/doodlechef/doodlechef/internal/auth"
	"github.com/doodlechef/doodlechef/internal/cleanup"
	"github.com/doodlechef/doodlechef/internal/config"
	"github.com/doodlechef/doodlechef/internal/database"
	"github.com/doodlechef/doodlechef/internal/dictionary"
	"github.com/doodlechef/doodlechef/internal/generation"
	"github.com/doodlechef/doodlechef/internal/prompt"
	"github.com/doodlechef/doodlechef/internal/provider/openai"
	"github.com/doodlechef/doodlechef/internal/provider/resilience"
	"github.com/doodlechef/doodlechef/internal/suggestion"
	"github.com/doodlechef/doodlechef/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "doodlechef-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting DoodleChef API")

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database and run migrations
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	if err := database.Migrate(ctx, dbConfig); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Initialize dictionary repository and service
	dictRepo := dictionary.NewPostgresRepository(pool)
	dictService := dictionary.NewService(dictRepo)

	// Seed dictionary content when a content directory is configured
	if contentDir := os.Getenv("CONTENT_DIR"); contentDir != "" {
		seeder := dictionary.NewSeeder(dictRepo, log)
		if _, err := seeder.SeedFromDir(ctx, contentDir); err != nil {
			log.Fatal().Err(err).Str("dir", contentDir).Msg("failed to seed dictionary")
		}
	}
	log.Info().Msg("dictionary service initialized")

	// Initialize the OpenAI client for moderation and image generation;
	// its resilient transport reports health via the provider registry
	providers := resilience.GlobalRegistry
	openaiClient := openai.NewClient(openai.ClientConfig{
		APIKey:   cfg.OpenAIAPIKey,
		Registry: providers,
		Logger:   log,
	})

	// Initialize generation repository and service
	generationRepo := generation.NewPostgresRepository(pool)
	generationService := generation.NewService(generation.ServiceConfig{
		Repository: generationRepo,
		Composer:   prompt.NewComposer(dictRepo),
		Moderator:  openaiClient,
		Images:     openaiClient,
		ImageOptions: generation.ImageOptions{
			Model:   cfg.ImageModel,
			Quality: cfg.ImageQuality,
			Size:    cfg.ImageSize,
		},
		Logger:           log,
		DeviceDailyLimit: cfg.DeviceDailyLimit,
		GlobalDailyLimit: cfg.GlobalDailyLimit,
	})
	log.Info().Msg("generation service initialized")

	// Initialize suggestion repository and service
	suggestionRepo := suggestion.NewPostgresRepository(pool)
	suggestionService := suggestion.NewService(suggestionRepo, log)
	log.Info().Msg("suggestion service initialized")

	// Initialize retention cleanup service
	cleanupService := cleanup.NewService(generationRepo, suggestionRepo, log)
	log.Info().Msg("cleanup service initialized")

	// Initialize admin auth
	sessions := auth.NewSessionService(auth.SessionConfig{
		SigningKey: cfg.SessionSecret,
		Issuer:     serviceName,
	})

	var pins *auth.PINVerifier
	if cfg.AdminPINHash != "" {
		pins = auth.NewPINVerifier(cfg.AdminPINHash)
	} else {
		log.Warn().Msg("ADMIN_PIN_HASH not configured - admin login will fail")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		GenerationService: generationService,
		SuggestionService: suggestionService,
		DictionaryService: dictService,
		CleanupService:    cleanupService,
		PINVerifier:       pins,
		Sessions:          sessions,
		Lockouts:          auth.NewLockoutTracker(),
		CronSecret:        cfg.CronSecret,
		SecureCookies:     cfg.IsProduction(),
		Pool:              pool,
		Providers:         providers,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // approval blocks on image generation
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
