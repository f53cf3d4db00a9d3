package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/prompt"
)

// Cardinality limits for the token list fields.
const (
	MaxEffects     = 3
	MaxAddons      = 3
	MaxSteps       = 6
	MaxIngredients = 6
)

// Default quota and payload ceilings.
const (
	DefaultDeviceDailyLimit = 10
	DefaultGlobalDailyLimit = 100
	DefaultMaxImageBytes    = 8 * 1024 * 1024
)

// Reviewer-visible reasons for a policy rejection during approval.
const (
	ReasonImageTooLarge = "Image payload too large"
	ReasonImageFlagged  = "Image failed safety check"
)

// ModerationResult is a content-safety verdict plus the raw classifier
// response, kept for audit.
type ModerationResult struct {
	Flagged bool
	Raw     json.RawMessage
}

// Moderator classifies content for safety.
type Moderator interface {
	// ModerateText classifies a text prompt.
	ModerateText(ctx context.Context, input string) (*ModerationResult, error)

	// ModerateImage classifies a base64-encoded PNG image.
	ModerateImage(ctx context.Context, imageBase64 string) (*ModerationResult, error)
}

// ImageOptions selects the generation model parameters.
type ImageOptions struct {
	Model   string
	Quality string
	Size    string
}

// ImageGenerator produces images from prompts.
type ImageGenerator interface {
	// Generate returns the base64-encoded image payload.
	Generate(ctx context.Context, promptText string, opts ImageOptions) (string, error)
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports one or more invalid submission fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("invalid submission: %s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("invalid submission: %d invalid fields", len(e.Fields))
}

// SubmitInput is a kid submission: the owning device plus the token labels
// picked from the published dictionary.
type SubmitInput struct {
	DeviceID  string
	Selection prompt.Selection
}

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	Request        *Request
	RemainingToday int
}

// ApproveOutcome is the outcome of an approve action. Status is terminal;
// Reason is set when approval was converted into a policy rejection.
type ApproveOutcome struct {
	Status Status
	Reason string
}

// ServiceConfig holds configuration for the generation service.
type ServiceConfig struct {
	// Repository is the generation request store.
	Repository Repository

	// Composer builds prompts from token selections.
	Composer *prompt.Composer

	// Moderator performs text and image safety checks.
	Moderator Moderator

	// Images is the image-generation gateway.
	Images ImageGenerator

	// ImageOptions are the generation parameters for approved requests.
	ImageOptions ImageOptions

	// Logger for service operations.
	Logger zerolog.Logger

	// DeviceDailyLimit is the per-device daily ceiling (default: 10).
	DeviceDailyLimit int

	// GlobalDailyLimit is the global daily ceiling (default: 100).
	GlobalDailyLimit int

	// MaxImageBytes caps the base64-encoded image payload (default: 8 MiB).
	MaxImageBytes int
}

// Service implements submission admission and the parental review lifecycle.
type Service struct {
	repo         Repository
	composer     *prompt.Composer
	moderator    Moderator
	images       ImageGenerator
	imageOptions ImageOptions
	logger       zerolog.Logger

	deviceDailyLimit int
	globalDailyLimit int
	maxImageBytes    int

	now func() time.Time
}

// NewService creates a new generation service.
func NewService(cfg ServiceConfig) *Service {
	deviceLimit := cfg.DeviceDailyLimit
	if deviceLimit == 0 {
		deviceLimit = DefaultDeviceDailyLimit
	}

	globalLimit := cfg.GlobalDailyLimit
	if globalLimit == 0 {
		globalLimit = DefaultGlobalDailyLimit
	}

	maxImageBytes := cfg.MaxImageBytes
	if maxImageBytes == 0 {
		maxImageBytes = DefaultMaxImageBytes
	}

	return &Service{
		repo:             cfg.Repository,
		composer:         cfg.Composer,
		moderator:        cfg.Moderator,
		images:           cfg.Images,
		imageOptions:     cfg.ImageOptions,
		logger:           cfg.Logger,
		deviceDailyLimit: deviceLimit,
		globalDailyLimit: globalLimit,
		maxImageBytes:    maxImageBytes,
		now:              time.Now,
	}
}

// Submit runs the admission pipeline: validate, compose, moderate, reserve.
// No quota slot is consumed unless every earlier stage passes.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	composed, err := s.composer.Build(ctx, input.Selection)
	if err != nil {
		return nil, err
	}

	verdict, err := s.moderator.ModerateText(ctx, composed.ComposedPrompt)
	if err != nil {
		return nil, fmt.Errorf("text moderation: %w", err)
	}
	if verdict.Flagged {
		s.logger.Info().
			Str("device_id", input.DeviceID).
			Msg("submission declined by text moderation")
		return nil, ErrPromptFlagged
	}

	req := &Request{
		ID:              uuid.NewString(),
		DeviceID:        input.DeviceID,
		TokenIDs:        composed.TokenIDs,
		ComposedPrompt:  composed.ComposedPrompt,
		ModerationInput: verdict.Raw,
	}

	outcome, err := s.repo.ReservePending(ctx, req, s.deviceDailyLimit, s.globalDailyLimit, startOfDayUTC(s.now()))
	if err != nil {
		return nil, err
	}
	if !outcome.Allowed {
		s.logger.Info().
			Str("device_id", input.DeviceID).
			Str("scope", string(outcome.DeniedScope)).
			Msg("submission denied by daily quota")
		return nil, &QuotaError{Scope: outcome.DeniedScope}
	}

	remaining := s.deviceDailyLimit - outcome.DeviceUsed
	if remaining < 0 {
		remaining = 0
	}

	s.logger.Info().
		Str("request_id", outcome.Record.ID).
		Str("device_id", input.DeviceID).
		Int("remaining_today", remaining).
		Msg("submission queued for review")

	return &SubmitResult{
		Request:        outcome.Record,
		RemainingToday: remaining,
	}, nil
}

// RemainingQuota returns how many submissions the device has left today.
func (s *Service) RemainingQuota(ctx context.Context, deviceID string) (int, error) {
	used, err := s.repo.CountForDevice(ctx, deviceID, startOfDayUTC(s.now()))
	if err != nil {
		return 0, err
	}

	remaining := s.deviceDailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Approve generates the image for a pending request and moves it to a
// terminal state. An oversized or flagged image converts the approval into
// a rejection with a reviewer-visible reason; a gateway failure leaves the
// request pending so the reviewer can retry.
func (s *Service) Approve(ctx context.Context, id string) (*ApproveOutcome, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, ErrRequestNotPending
	}

	imageBase64, err := s.images.Generate(ctx, req.ComposedPrompt, s.imageOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageGeneration, err)
	}
	if imageBase64 == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrImageGeneration)
	}

	if len(imageBase64) > s.maxImageBytes {
		if err := s.rejectPending(ctx, id, nil); err != nil {
			return nil, err
		}
		s.logger.Warn().
			Str("request_id", id).
			Int("payload_bytes", len(imageBase64)).
			Msg("approval converted to rejection: image payload too large")
		return &ApproveOutcome{Status: StatusRejected, Reason: ReasonImageTooLarge}, nil
	}

	verdict, err := s.moderator.ModerateImage(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("image moderation: %w", err)
	}
	if verdict.Flagged {
		if err := s.rejectPending(ctx, id, verdict.Raw); err != nil {
			return nil, err
		}
		s.logger.Warn().
			Str("request_id", id).
			Msg("approval converted to rejection: image flagged by moderation")
		return &ApproveOutcome{Status: StatusRejected, Reason: ReasonImageFlagged}, nil
	}

	err = s.repo.UpdateIfPending(ctx, id, TerminalUpdate{
		Status:           StatusApproved,
		ImageData:        &imageBase64,
		ModerationOutput: verdict.Raw,
		ReviewedAt:       s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("request_id", id).Msg("generation approved")
	return &ApproveOutcome{Status: StatusApproved}, nil
}

// Reject moves a pending request to rejected without generating an image.
func (s *Service) Reject(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	if err := s.rejectPending(ctx, id, nil); err != nil {
		return err
	}

	s.logger.Info().Str("request_id", id).Msg("generation rejected")
	return nil
}

func (s *Service) rejectPending(ctx context.Context, id string, moderationOutput json.RawMessage) error {
	return s.repo.UpdateIfPending(ctx, id, TerminalUpdate{
		Status:           StatusRejected,
		ImageData:        nil,
		ModerationOutput: moderationOutput,
		ReviewedAt:       s.now().UTC(),
	})
}

// Queue returns the pending requests awaiting parental review, oldest first.
func (s *Service) Queue(ctx context.Context) ([]*Request, error) {
	return s.repo.ListPending(ctx)
}

// Gallery returns the device's approved requests, newest first.
func (s *Service) Gallery(ctx context.Context, deviceID string) ([]*Request, error) {
	if !isUUID(deviceID) {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "deviceId", Message: "must be a valid UUID"},
		}}
	}
	return s.repo.ListApprovedForDevice(ctx, deviceID)
}

// Get retrieves a single request by id.
func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	return s.repo.Get(ctx, id)
}

func validateSubmitInput(input SubmitInput) error {
	var fields []FieldError

	if !isUUID(input.DeviceID) {
		fields = append(fields, FieldError{Field: "deviceId", Message: "must be a valid UUID"})
	}

	required := []struct {
		field string
		value string
	}{
		{"palette", input.Selection.Palette},
		{"style", input.Selection.Style},
		{"theme", input.Selection.Theme},
		{"mood", input.Selection.Mood},
	}
	for _, f := range required {
		if f.value == "" {
			fields = append(fields, FieldError{Field: f.field, Message: "is required"})
		}
	}

	lists := []struct {
		field  string
		values []string
		max    int
	}{
		{"effects", input.Selection.Effects, MaxEffects},
		{"addons", input.Selection.Addons, MaxAddons},
		{"steps", input.Selection.Steps, MaxSteps},
		{"ingredients", input.Selection.Ingredients, MaxIngredients},
	}
	for _, l := range lists {
		if len(l.values) > l.max {
			fields = append(fields, FieldError{
				Field:   l.field,
				Message: fmt.Sprintf("must have at most %d entries", l.max),
			})
		}
		for _, v := range l.values {
			if v == "" {
				fields = append(fields, FieldError{Field: l.field, Message: "entries must be non-empty"})
				break
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func isUUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// startOfDayUTC returns the UTC midnight that begins t's day. Quota windows
// reset at this boundary regardless of the server's local zone.
func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
