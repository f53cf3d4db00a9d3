package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/suggestion"
)

// SuggestionHandler handles the kid-facing suggestion endpoint.
type SuggestionHandler struct {
	service *suggestion.Service
	logger  zerolog.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(service *suggestion.Service, logger zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{service: service, logger: logger}
}

// Create handles POST /v1/suggestions - propose a dictionary phrase.
func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.SuggestionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.service.Create(r.Context(), suggestion.CreateInput{
		DeviceID: input.DeviceID,
		Phrase:   input.Phrase,
		Category: input.Category,
	})
	if err != nil {
		var validationErr *suggestion.ValidationError
		if errors.As(err, &validationErr) {
			fields := make([]models.FieldError, 0, len(validationErr.Fields))
			for _, f := range validationErr.Fields {
				fields = append(fields, models.FieldError{Field: f.Field, Message: f.Message})
			}
			response.BadRequest(w, r, "invalid suggestion", fields)
			return
		}
		h.logger.Error().Err(err).Msg("suggestion create failed")
		response.InternalError(w, r, "suggestion create failed")
		return
	}

	body := models.SuggestionCreated{
		ID:        created.ID,
		Status:    string(created.Status),
		CreatedAt: models.Timestamp(created.CreatedAt),
	}
	response.Created(w, r, fmt.Sprintf("/v1/suggestions/%s", created.ID), body)
}
