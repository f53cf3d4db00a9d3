package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool
	providers *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. pool may be nil when running
// against in-memory storage; readiness then only reports the process.
// providers may be nil when no outbound gateways are wired.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool, providers *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. An open
// gateway circuit degrades the status but does not fail readiness; the
// breaker recovers on its own.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	if h.providers != nil && h.providers.ProviderCount() > 0 {
		providers := make(map[string]interface{})
		for _, p := range h.providers.GetAllHealth() {
			providers[p.Name] = p.CircuitState.String()
			if !p.IsHealthy() {
				health.Status = models.HealthStatusDegraded
			}
		}
		health.Details = map[string]interface{}{"providers": providers}
	}

	response.JSON(w, r, http.StatusOK, health)
}
