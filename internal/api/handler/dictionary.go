package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/dictionary"
)

// DictionaryHandler handles the published token dictionary endpoints.
type DictionaryHandler struct {
	service *dictionary.Service
	logger  zerolog.Logger
}

// NewDictionaryHandler creates a new DictionaryHandler.
func NewDictionaryHandler(service *dictionary.Service, logger zerolog.Logger) *DictionaryHandler {
	return &DictionaryHandler{service: service, logger: logger}
}

// List handles GET /v1/dictionary - the active token labels per category.
func (h *DictionaryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("dictionary lookup failed")
		response.InternalError(w, r, "dictionary lookup failed")
		return
	}
	response.JSON(w, r, http.StatusOK, list)
}

// Presets handles GET /v1/presets - curated token bundles.
func (h *DictionaryHandler) Presets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.service.Presets(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("presets lookup failed")
		response.InternalError(w, r, "presets lookup failed")
		return
	}
	response.JSON(w, r, http.StatusOK, presets)
}
