// Package cleanup implements the retention sweep for generation requests and
// suggestions. It is triggered by the cron endpoint or the background worker.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/generation"
	"github.com/doodlechef/doodlechef/internal/suggestion"
)

// Retention windows in days.
const (
	PendingRetentionDays    = 7
	ApprovedRetentionDays   = 90
	RejectedRetentionDays   = 30
	SuggestionRetentionDays = 7
)

// Counts reports how many rows each sweep batch deleted.
type Counts struct {
	Pending     int64 `json:"pending"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Suggestions int64 `json:"suggestions"`
}

// Service runs the retention sweep.
type Service struct {
	generations generation.Repository
	suggestions suggestion.Repository
	logger      zerolog.Logger
}

// NewService creates a new cleanup service.
func NewService(generations generation.Repository, suggestions suggestion.Repository, logger zerolog.Logger) *Service {
	return &Service{
		generations: generations,
		suggestions: suggestions,
		logger:      logger,
	}
}

// Sweep deletes expired rows as of the given time. Pending requests and
// pending suggestions age from creation; approved and rejected requests age
// from review, falling back to creation for rows that never recorded one.
// The first failing batch aborts the sweep; already-deleted batches stay
// deleted, and the next run picks up where this one failed.
func (s *Service) Sweep(ctx context.Context, now time.Time) (*Counts, error) {
	counts := &Counts{}

	var err error
	counts.Pending, err = s.generations.DeleteOlderThan(ctx, generation.StatusPending, daysBefore(now, PendingRetentionDays))
	if err != nil {
		return nil, fmt.Errorf("sweep pending: %w", err)
	}

	counts.Approved, err = s.generations.DeleteOlderThan(ctx, generation.StatusApproved, daysBefore(now, ApprovedRetentionDays))
	if err != nil {
		return nil, fmt.Errorf("sweep approved: %w", err)
	}

	counts.Rejected, err = s.generations.DeleteOlderThan(ctx, generation.StatusRejected, daysBefore(now, RejectedRetentionDays))
	if err != nil {
		return nil, fmt.Errorf("sweep rejected: %w", err)
	}

	counts.Suggestions, err = s.suggestions.DeletePendingOlderThan(ctx, daysBefore(now, SuggestionRetentionDays))
	if err != nil {
		return nil, fmt.Errorf("sweep suggestions: %w", err)
	}

	s.logger.Info().
		Int64("pending", counts.Pending).
		Int64("approved", counts.Approved).
		Int64("rejected", counts.Rejected).
		Int64("suggestions", counts.Suggestions).
		Msg("retention sweep complete")

	return counts, nil
}

func daysBefore(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, -days)
}
