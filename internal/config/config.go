// Package config loads application configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Allow-listed image generation parameters. Values outside these lists fall
// back to the default with a warning rather than failing startup.
var (
	AllowedImageModels    = []string{"gpt-image-1.5", "gpt-image-1", "gpt-image-1-mini"}
	AllowedImageQualities = []string{"low", "medium"}
	AllowedImageSizes     = []string{"1024x1024"}
)

// Image generation defaults.
const (
	DefaultImageModel   = "gpt-image-1"
	DefaultImageQuality = "low"
	DefaultImageSize    = "1024x1024"
)

// MinSessionSecretLength is the minimum byte length for SESSION_SECRET.
const MinSessionSecretLength = 32

// Config is the resolved application configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Environment is "development" or "production".
	Environment string

	// SessionSecret signs admin session tokens.
	SessionSecret string

	// AdminPINHash is the bcrypt hash of the admin PIN.
	AdminPINHash string

	// OpenAIAPIKey authenticates calls to the OpenAI API.
	OpenAIAPIKey string

	// CronSecret is the bearer token guarding the cleanup endpoint.
	CronSecret string

	// ImageModel, ImageQuality and ImageSize select generation parameters.
	ImageModel   string
	ImageQuality string
	ImageSize    string

	// DeviceDailyLimit and GlobalDailyLimit override the quota ceilings
	// when positive; zero means use the service defaults.
	DeviceDailyLimit int
	GlobalDailyLimit int

	// OTLPEndpoint and TelemetryEnabled configure tracing export.
	OTLPEndpoint     string
	TelemetryEnabled bool
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
// Missing secrets are fatal in production and logged as warnings otherwise,
// so local development works out of the box.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug().Msg("loaded .env file")
	}

	cfg := &Config{
		Port:             envOr("APP_PORT", "8080"),
		Environment:      envOr("APP_ENV", "development"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		AdminPINHash:     os.Getenv("ADMIN_PIN_HASH"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		OTLPEndpoint:     envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}

	var missing []string
	checkSecret := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	checkSecret("SESSION_SECRET", cfg.SessionSecret)
	checkSecret("ADMIN_PIN_HASH", cfg.AdminPINHash)
	checkSecret("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	checkSecret("CRON_SECRET", cfg.CronSecret)

	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLength)
	}

	if len(missing) > 0 {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
		logger.Warn().
			Strs("missing", missing).
			Msg("running without required secrets; the affected endpoints will fail")
	}

	cfg.ImageModel = allowListed(logger, "IMAGE_MODEL", AllowedImageModels, DefaultImageModel)
	cfg.ImageQuality = allowListed(logger, "IMAGE_QUALITY", AllowedImageQualities, DefaultImageQuality)
	cfg.ImageSize = allowListed(logger, "IMAGE_SIZE", AllowedImageSizes, DefaultImageSize)

	var err error
	cfg.DeviceDailyLimit, err = positiveIntOr("DEVICE_DAILY_LIMIT", 0)
	if err != nil {
		return nil, err
	}
	cfg.GlobalDailyLimit, err = positiveIntOr("GLOBAL_DAILY_LIMIT", 0)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func allowListed(logger zerolog.Logger, name string, allowed []string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	logger.Warn().
		Str("name", name).
		Str("value", value).
		Strs("allowed", allowed).
		Str("fallback", fallback).
		Msg("ignoring disallowed configuration value")
	return fallback
}

func positiveIntOr(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return parsed, nil
}
