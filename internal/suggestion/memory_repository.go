package suggestion

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Used for development and testing.
type InMemoryRepository struct {
	mu          sync.Mutex
	suggestions map[string]*Suggestion
}

// NewInMemoryRepository creates a new in-memory suggestion repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		suggestions: make(map[string]*Suggestion),
	}
}

// Create stores a new suggestion.
func (r *InMemoryRepository) Create(_ context.Context, s *Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
		s.CreatedAt = stored.CreatedAt
	}
	r.suggestions[stored.ID] = &stored
	return nil
}

// Get retrieves a suggestion by id.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.suggestions[id]
	if !ok {
		return nil, ErrSuggestionNotFound
	}

	out := *s
	return &out, nil
}

// ListPending returns pending suggestions ordered by creation time ascending.
func (r *InMemoryRepository) ListPending(_ context.Context) ([]*Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*Suggestion
	for _, s := range r.suggestions {
		if s.Status == StatusPending {
			out := *s
			pending = append(pending, &out)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	return pending, nil
}

// RejectIfPending marks a suggestion rejected if it is still pending.
func (r *InMemoryRepository) RejectIfPending(_ context.Context, id string, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.suggestions[id]
	if !ok || s.Status != StatusPending {
		return ErrSuggestionNotPending
	}

	s.Status = StatusRejected
	s.ReviewedAt = &reviewedAt
	return nil
}

// DeletePendingOlderThan deletes pending suggestions created before cutoff.
func (r *InMemoryRepository) DeletePendingOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, s := range r.suggestions {
		if s.Status == StatusPending && s.CreatedAt.Before(cutoff) {
			delete(r.suggestions, id)
			deleted++
		}
	}

	return deleted, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
