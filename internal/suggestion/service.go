package suggestion

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports invalid suggestion input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("invalid suggestion: %s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("invalid suggestion: %d invalid fields", len(e.Fields))
}

// CreateInput is a kid-submitted phrase proposal.
type CreateInput struct {
	DeviceID string
	Phrase   string
	Category *string
}

// Service manages the suggestion lifecycle.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new suggestion service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and stores a new pending suggestion.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Suggestion, error) {
	var fields []FieldError

	if _, err := uuid.Parse(input.DeviceID); err != nil {
		fields = append(fields, FieldError{Field: "deviceId", Message: "must be a valid UUID"})
	}

	phrase := strings.TrimSpace(input.Phrase)
	if phrase == "" {
		fields = append(fields, FieldError{Field: "phrase", Message: "is required"})
	} else if utf8.RuneCountInString(phrase) > MaxPhraseLength {
		fields = append(fields, FieldError{
			Field:   "phrase",
			Message: fmt.Sprintf("must be at most %d characters", MaxPhraseLength),
		})
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	suggestion := &Suggestion{
		ID:       uuid.NewString(),
		DeviceID: input.DeviceID,
		Phrase:   phrase,
		Category: input.Category,
		Status:   StatusPending,
	}
	if err := s.repo.Create(ctx, suggestion); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("suggestion_id", suggestion.ID).
		Str("device_id", suggestion.DeviceID).
		Msg("suggestion stored for review")

	return suggestion, nil
}

// Pending returns the suggestions awaiting review, oldest first.
func (s *Service) Pending(ctx context.Context) ([]*Suggestion, error) {
	return s.repo.ListPending(ctx)
}

// Reject marks a pending suggestion rejected.
func (s *Service) Reject(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.RejectIfPending(ctx, id, s.now().UTC()); err != nil {
		return err
	}

	s.logger.Info().Str("suggestion_id", id).Msg("suggestion rejected")
	return nil
}
