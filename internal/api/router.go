// Package api provides the HTTP API for DoodleChef.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/handler"
	"github.com/doodlechef/doodlechef/internal/api/middleware"
	"github.com/doodlechef/doodlechef/internal/auth"
	"github.com/doodlechef/doodlechef/internal/cleanup"
	"github.com/doodlechef/doodlechef/internal/dictionary"
	"github.com/doodlechef/doodlechef/internal/generation"
	"github.com/doodlechef/doodlechef/internal/provider/resilience"
	"github.com/doodlechef/doodlechef/internal/suggestion"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	GenerationService *generation.Service
	SuggestionService *suggestion.Service
	DictionaryService *dictionary.Service
	CleanupService    *cleanup.Service

	PINVerifier *auth.PINVerifier
	Sessions    *auth.SessionService
	Lockouts    *auth.LockoutTracker

	// CronSecret guards the cleanup endpoint.
	CronSecret string

	// SecureCookies marks session cookies Secure; enabled in production.
	SecureCookies bool

	// Pool backs the readiness check; may be nil with in-memory storage.
	Pool *pgxpool.Pool

	// Providers reports outbound gateway health on the readiness check;
	// may be nil.
	Providers *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "doodlechef-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.Providers)
	generationHandler := handler.NewGenerationHandler(cfg.GenerationService, cfg.Logger)
	dictionaryHandler := handler.NewDictionaryHandler(cfg.DictionaryService, cfg.Logger)
	suggestionHandler := handler.NewSuggestionHandler(cfg.SuggestionService, cfg.Logger)
	adminHandler := handler.NewAdminHandler(handler.AdminHandlerConfig{
		PINVerifier:   cfg.PINVerifier,
		Sessions:      cfg.Sessions,
		Lockouts:      cfg.Lockouts,
		SecureCookies: cfg.SecureCookies,
		Logger:        cfg.Logger,
	})
	reviewHandler := handler.NewReviewHandler(cfg.GenerationService, cfg.SuggestionService, cfg.Logger)
	cleanupHandler := handler.NewCleanupHandler(cfg.CleanupService, cfg.CronSecret, cfg.Logger)

	// Session middleware for the admin surface
	sessionAuth := middleware.SessionAuth(cfg.Sessions, cfg.SecureCookies)

	// Rate limit middleware per endpoint category
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)             // 10 req/min
	submissionRateLimit := middleware.RateLimitByIP(middleware.SubmissionRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByDevice(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Kid-facing read endpoints - standard rate limiting
		r.With(standardRateLimit).Get("/dictionary", dictionaryHandler.List)
		r.With(standardRateLimit).Get("/presets", dictionaryHandler.Presets)
		r.With(standardRateLimit).Get("/gallery", generationHandler.Gallery)

		// Kid-facing write endpoints - stricter edge limit; the per-device
		// daily quota is enforced in storage
		r.With(submissionRateLimit).Post("/generations", generationHandler.Create)
		r.With(submissionRateLimit).Post("/suggestions", suggestionHandler.Create)

		// Admin endpoints - PIN login, session-guarded review queue
		r.Route("/admin", func(r chi.Router) {
			r.With(authRateLimit).Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(sessionAuth)
				r.Get("/queue", reviewHandler.Queue)
				r.Post("/approve", reviewHandler.Approve)
				r.Post("/reject", reviewHandler.Reject)
			})
		})

		// Cron endpoints - shared-secret bearer auth inside the handler
		r.Post("/cron/cleanup", cleanupHandler.Run)
	})

	return r
}
