package config_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlechef/doodlechef/internal/config"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-session-secret-at-least-32-chars")
	t.Setenv("ADMIN_PIN_HASH", "$2a$10$fakehashfortestingonly")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CRON_SECRET", "cron-test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, config.DefaultImageModel, cfg.ImageModel)
	assert.Equal(t, config.DefaultImageQuality, cfg.ImageQuality)
	assert.Equal(t, config.DefaultImageSize, cfg.ImageSize)
	assert.Zero(t, cfg.DeviceDailyLimit)
	assert.Zero(t, cfg.GlobalDailyLimit)
}

func TestLoad_MissingSecretsFatalInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ADMIN_PIN_HASH", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CRON_SECRET", "")

	_, err := config.Load(zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_MissingSecretsToleratedInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ADMIN_PIN_HASH", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CRON_SECRET", "")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, cfg.SessionSecret)
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := config.Load(zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_DisallowedImageValuesFallBack(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("IMAGE_MODEL", "dall-e-2")
	t.Setenv("IMAGE_QUALITY", "ultra")
	t.Setenv("IMAGE_SIZE", "64x64")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultImageModel, cfg.ImageModel)
	assert.Equal(t, config.DefaultImageQuality, cfg.ImageQuality)
	assert.Equal(t, config.DefaultImageSize, cfg.ImageSize)
}

func TestLoad_AllowedImageValues(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("IMAGE_MODEL", "gpt-image-1-mini")
	t.Setenv("IMAGE_QUALITY", "medium")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "gpt-image-1-mini", cfg.ImageModel)
	assert.Equal(t, "medium", cfg.ImageQuality)
}

func TestLoad_QuotaOverrides(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("DEVICE_DAILY_LIMIT", "5")
	t.Setenv("GLOBAL_DAILY_LIMIT", "50")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DeviceDailyLimit)
	assert.Equal(t, 50, cfg.GlobalDailyLimit)
}

func TestLoad_InvalidQuotaOverride(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("DEVICE_DAILY_LIMIT", "-1")

	_, err := config.Load(zerolog.Nop())
	assert.Error(t, err)
}
