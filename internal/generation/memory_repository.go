package generation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository.
// Used for development and testing.
type MemoryRepository struct {
	mu       sync.Mutex
	requests map[string]*Request
}

// NewMemoryRepository creates a new in-memory generation repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		requests: make(map[string]*Request),
	}
}

// ReservePending checks quotas and inserts the pending row under a single
// lock, giving the same atomicity the SQL implementation gets from its
// serializable transaction.
func (r *MemoryRepository) ReservePending(_ context.Context, req *Request, deviceLimit, globalLimit int, since time.Time) (*ReserveOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deviceCount, globalCount int
	for _, existing := range r.requests {
		if existing.CreatedAt.Before(since) {
			continue
		}
		globalCount++
		if existing.DeviceID == req.DeviceID {
			deviceCount++
		}
	}

	if deviceCount >= deviceLimit {
		return &ReserveOutcome{Allowed: false, DeniedScope: QuotaScopeDevice}, nil
	}
	if globalCount >= globalLimit {
		return &ReserveOutcome{Allowed: false, DeniedScope: QuotaScopeGlobal}, nil
	}

	created := *req
	created.Status = StatusPending
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	r.requests[created.ID] = &created

	out := created
	return &ReserveOutcome{
		Allowed:    true,
		Record:     &out,
		DeviceUsed: deviceCount + 1,
	}, nil
}

// CountForDevice returns the device's request count since the given time.
func (r *MemoryRepository) CountForDevice(_ context.Context, deviceID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, req := range r.requests {
		if req.DeviceID == deviceID && !req.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// Get retrieves a request by id.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}

	out := *req
	return &out, nil
}

// ListPending returns pending requests ordered by creation time ascending.
func (r *MemoryRepository) ListPending(_ context.Context) ([]*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*Request
	for _, req := range r.requests {
		if req.Status == StatusPending {
			out := *req
			pending = append(pending, &out)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	return pending, nil
}

// ListApprovedForDevice returns a device's approved requests, newest first.
func (r *MemoryRepository) ListApprovedForDevice(_ context.Context, deviceID string) ([]*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var approved []*Request
	for _, req := range r.requests {
		if req.DeviceID == deviceID && req.Status == StatusApproved {
			out := *req
			approved = append(approved, &out)
		}
	}

	sort.Slice(approved, func(i, j int) bool {
		return approved[i].CreatedAt.After(approved[j].CreatedAt)
	})

	return approved, nil
}

// UpdateIfPending applies a terminal update if the row is still pending.
func (r *MemoryRepository) UpdateIfPending(_ context.Context, id string, update TerminalUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return ErrRequestNotPending
	}
	if req.Status != StatusPending {
		return ErrRequestNotPending
	}

	req.Status = update.Status
	req.ImageData = update.ImageData
	if update.ModerationOutput != nil {
		req.ModerationOutput = update.ModerationOutput
	}
	reviewedAt := update.ReviewedAt
	req.ReviewedAt = &reviewedAt

	return nil
}

// DeleteOlderThan deletes rows in the given status past the cutoff.
func (r *MemoryRepository) DeleteOlderThan(_ context.Context, status Status, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, req := range r.requests {
		if req.Status != status {
			continue
		}
		anchor := req.CreatedAt
		if req.ReviewedAt != nil {
			anchor = *req.ReviewedAt
		}
		if anchor.Before(cutoff) {
			delete(r.requests, id)
			deleted++
		}
	}

	return deleted, nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
