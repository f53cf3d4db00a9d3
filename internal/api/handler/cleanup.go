package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/cleanup"
)

// CleanupHandler handles the cron-triggered retention sweep endpoint.
type CleanupHandler struct {
	service    *cleanup.Service
	cronSecret string
	logger     zerolog.Logger
}

// NewCleanupHandler creates a new CleanupHandler.
func NewCleanupHandler(service *cleanup.Service, cronSecret string, logger zerolog.Logger) *CleanupHandler {
	return &CleanupHandler{
		service:    service,
		cronSecret: cronSecret,
		logger:     logger,
	}
}

// Run handles POST /v1/cron/cleanup - run the retention sweep.
// Authenticated by a shared bearer secret; the comparison is constant-time
// so the check leaks nothing about the secret.
func (h *CleanupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Unauthorized(w, r, "invalid cron token")
		return
	}

	counts, err := h.service.Sweep(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error().Err(err).Msg("retention sweep failed")
		response.InternalError(w, r, "retention sweep failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.CleanupResult{
		Deleted: models.CleanupCounts{
			Pending:     counts.Pending,
			Approved:    counts.Approved,
			Rejected:    counts.Rejected,
			Suggestions: counts.Suggestions,
		},
	})
}

func (h *CleanupHandler) authorized(r *http.Request) bool {
	if h.cronSecret == "" {
		return false
	}

	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	token := header[len(prefix):]
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}
