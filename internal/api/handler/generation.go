// Package handler provides HTTP handlers for the DoodleChef API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/generation"
	"github.com/doodlechef/doodlechef/internal/prompt"
)

// declinedMessage is the kid-friendly decline shown when moderation flags a
// composed prompt. Deliberately vague: it must not hint at what was flagged.
const declinedMessage = "Let's try a different combo!"

// GenerationHandler handles kid-facing generation endpoints.
type GenerationHandler struct {
	service *generation.Service
	logger  zerolog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(service *generation.Service, logger zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{service: service, logger: logger}
}

// Create handles POST /v1/generations - submit a recipe card request.
func (h *GenerationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.GenerationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Submit(r.Context(), generation.SubmitInput{
		DeviceID: input.DeviceID,
		Selection: prompt.Selection{
			Palette:     input.Palette,
			Style:       input.Style,
			Theme:       input.Theme,
			Mood:        input.Mood,
			Title:       input.Title,
			Creature:    input.Creature,
			Effects:     input.Effects,
			Addons:      input.Addons,
			Steps:       input.Steps,
			Ingredients: input.Ingredients,
		},
	})
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	created := models.GenerationCreated{
		ID:             result.Request.ID,
		Status:         string(result.Request.Status),
		CreatedAt:      models.Timestamp(result.Request.CreatedAt),
		RemainingToday: result.RemainingToday,
	}
	response.Created(w, r, fmt.Sprintf("/v1/generations/%s", created.ID), created)
}

func (h *GenerationHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *generation.ValidationError
		unknownToken  *prompt.UnknownTokenError
		quotaErr      *generation.QuotaError
	)
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "invalid submission", toFieldErrors(validationErr.Fields))
	case errors.As(err, &unknownToken):
		response.BadRequest(w, r, "unknown token", []models.FieldError{
			{Field: string(unknownToken.Category), Message: fmt.Sprintf("%q is not a recognized label", unknownToken.Label)},
		})
	case errors.Is(err, generation.ErrPromptFlagged):
		response.Declined(w, r, declinedMessage)
	case errors.As(err, &quotaErr):
		response.TooManyRequests(w, r, quotaErr.Reason())
	case errors.Is(err, generation.ErrSlotUnavailable):
		h.logger.Error().Err(err).Msg("slot reservation exhausted retries")
		response.InternalError(w, r, "could not reserve a slot, please try again")
	default:
		h.logger.Error().Err(err).Msg("submission failed")
		response.InternalError(w, r, "submission failed")
	}
}

// Gallery handles GET /v1/gallery - approved images for a device.
func (h *GenerationHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")

	requests, err := h.service.Gallery(r.Context(), deviceID)
	if err != nil {
		var validationErr *generation.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "invalid gallery query", toFieldErrors(validationErr.Fields))
			return
		}
		h.logger.Error().Err(err).Msg("gallery lookup failed")
		response.InternalError(w, r, "gallery lookup failed")
		return
	}

	gallery := models.Gallery{Images: make([]models.GalleryImage, 0, len(requests))}
	for _, req := range requests {
		image := models.GalleryImage{
			ID:        req.ID,
			TokenIDs:  toAPITokenIDs(req.TokenIDs),
			CreatedAt: models.Timestamp(req.CreatedAt),
		}
		if req.ImageData != nil {
			image.ImageData = *req.ImageData
		}
		gallery.Images = append(gallery.Images, image)
	}

	response.JSON(w, r, http.StatusOK, gallery)
}

func toFieldErrors(fields []generation.FieldError) []models.FieldError {
	out := make([]models.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}

func toAPITokenIDs(t prompt.TokenIDs) models.TokenIDs {
	return models.TokenIDs{
		Palette:     t.Palette,
		Style:       t.Style,
		Theme:       t.Theme,
		Mood:        t.Mood,
		Title:       t.Title,
		Creature:    t.Creature,
		Effects:     t.Effects,
		Addons:      t.Addons,
		Steps:       t.Steps,
		Ingredients: t.Ingredients,
	}
}
