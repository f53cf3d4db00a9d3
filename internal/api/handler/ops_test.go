package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlechef/doodlechef/internal/api/handler"
	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/provider/openai"
	"github.com/doodlechef/doodlechef/internal/provider/resilience"
)

func TestOpsHandler_HealthCheck(t *testing.T) {
	h := handler.NewOpsHandler("1.2.3", "2026-01-01T00:00:00Z", nil, nil)

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Details["version"])
}

func TestOpsHandler_Readiness_ReportsProviderHealth(t *testing.T) {
	registry := resilience.NewRegistry()

	// The default OpenAI transport registers itself under its provider name.
	_ = openai.NewClient(openai.ClientConfig{
		APIKey:   "test-key",
		Registry: registry,
		Logger:   zerolog.Nop(),
	})
	require.Equal(t, 1, registry.ProviderCount())

	h := handler.NewOpsHandler("test", "unknown", nil, registry)

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)

	providers, ok := health.Details["providers"].(map[string]interface{})
	require.True(t, ok, "expected providers detail")
	assert.Equal(t, "closed", providers[openai.ProviderName])
}

func TestOpsHandler_Readiness_NoProviders(t *testing.T) {
	h := handler.NewOpsHandler("test", "unknown", nil, resilience.NewRegistry())

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotContains(t, health.Details, "providers")
}
