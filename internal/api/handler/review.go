package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/generation"
	"github.com/doodlechef/doodlechef/internal/suggestion"
)

const reviewTypeSuggestion = "suggestion"

// ReviewHandler handles the parental review queue and its actions.
type ReviewHandler struct {
	generations *generation.Service
	suggestions *suggestion.Service
	logger      zerolog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(generations *generation.Service, suggestions *suggestion.Service, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		generations: generations,
		suggestions: suggestions,
		logger:      logger,
	}
}

// Queue handles GET /v1/admin/queue - pending generations and suggestions.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	pending, err := h.generations.Queue(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("queue lookup failed")
		response.InternalError(w, r, "queue lookup failed")
		return
	}

	pendingSuggestions, err := h.suggestions.Pending(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("suggestion queue lookup failed")
		response.InternalError(w, r, "queue lookup failed")
		return
	}

	queue := models.ReviewQueue{
		Generations: make([]models.QueueGeneration, 0, len(pending)),
		Suggestions: make([]models.QueueSuggestion, 0, len(pendingSuggestions)),
	}
	for _, req := range pending {
		queue.Generations = append(queue.Generations, models.QueueGeneration{
			ID:        req.ID,
			DeviceID:  req.DeviceID,
			TokenIDs:  toAPITokenIDs(req.TokenIDs),
			Status:    string(req.Status),
			CreatedAt: models.Timestamp(req.CreatedAt),
		})
	}
	for _, s := range pendingSuggestions {
		queue.Suggestions = append(queue.Suggestions, models.QueueSuggestion{
			ID:        s.ID,
			DeviceID:  s.DeviceID,
			Phrase:    s.Phrase,
			Category:  s.Category,
			Status:    string(s.Status),
			CreatedAt: models.Timestamp(s.CreatedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, queue)
}

// Approve handles POST /v1/admin/approve - generate and publish an image.
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeReviewID(w, r)
	if !ok {
		return
	}

	outcome, err := h.generations.Approve(r.Context(), id)
	if err != nil {
		h.writeReviewError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ReviewResult{
		ID:     id,
		Status: string(outcome.Status),
		Reason: outcome.Reason,
	})
}

// Reject handles POST /v1/admin/reject - reject a generation or suggestion.
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var input models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		response.BadRequest(w, r, "id is required", nil)
		return
	}

	if input.Type == reviewTypeSuggestion {
		if err := h.suggestions.Reject(r.Context(), input.ID); err != nil {
			h.writeSuggestionError(w, r, err)
			return
		}
		response.JSON(w, r, http.StatusOK, models.ReviewResult{
			ID:     input.ID,
			Status: string(suggestion.StatusRejected),
			Type:   reviewTypeSuggestion,
		})
		return
	}

	if err := h.generations.Reject(r.Context(), input.ID); err != nil {
		h.writeReviewError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ReviewResult{
		ID:     input.ID,
		Status: string(generation.StatusRejected),
	})
}

func decodeReviewID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		response.BadRequest(w, r, "id is required", nil)
		return "", false
	}
	return input.ID, true
}

func (h *ReviewHandler) writeReviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generation.ErrRequestNotFound):
		response.NotFound(w, r, "generation request not found")
	case errors.Is(err, generation.ErrRequestNotPending):
		response.Conflict(w, r, "request is not pending")
	case errors.Is(err, generation.ErrImageGeneration):
		h.logger.Error().Err(err).Msg("image generation failed")
		response.BadGateway(w, r, "image generation failed")
	default:
		h.logger.Error().Err(err).Msg("review action failed")
		response.InternalError(w, r, "review action failed")
	}
}

func (h *ReviewHandler) writeSuggestionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, suggestion.ErrSuggestionNotFound):
		response.NotFound(w, r, "suggestion not found")
	case errors.Is(err, suggestion.ErrSuggestionNotPending):
		response.Conflict(w, r, "suggestion is not pending")
	default:
		h.logger.Error().Err(err).Msg("suggestion reject failed")
		response.InternalError(w, r, "suggestion reject failed")
	}
}
