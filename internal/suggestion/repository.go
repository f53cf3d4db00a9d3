package suggestion

import (
	"context"
	"time"
)

// Repository defines storage operations for suggestions.
type Repository interface {
	// Create stores a new suggestion.
	Create(ctx context.Context, s *Suggestion) error

	// Get retrieves a suggestion by id. Returns ErrSuggestionNotFound when
	// absent.
	Get(ctx context.Context, id string) (*Suggestion, error)

	// ListPending returns pending suggestions ordered by creation time
	// ascending.
	ListPending(ctx context.Context) ([]*Suggestion, error)

	// RejectIfPending marks a suggestion rejected only when it is still
	// pending. Returns ErrSuggestionNotPending when the guard fails.
	RejectIfPending(ctx context.Context, id string, reviewedAt time.Time) error

	// DeletePendingOlderThan deletes pending suggestions created before
	// cutoff. Returns the number of rows deleted.
	DeletePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
