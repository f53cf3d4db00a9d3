package generation

import (
	"context"
	"time"
)

// Repository defines storage operations for generation requests.
//
// ReservePending is the concurrency-critical operation: the quota counts and
// the insert must execute as one atomically-isolated unit so two concurrent
// submissions cannot both pass a check only one should pass.
type Repository interface {
	// ReservePending atomically counts today's rows for the device and
	// globally, and inserts req as pending when both ceilings have headroom.
	// since is the UTC-midnight day boundary. Implementations retry
	// serialization conflicts internally; exhaustion surfaces as
	// ErrSlotUnavailable.
	ReservePending(ctx context.Context, req *Request, deviceLimit, globalLimit int, since time.Time) (*ReserveOutcome, error)

	// CountForDevice returns the device's request count since the given time.
	CountForDevice(ctx context.Context, deviceID string, since time.Time) (int, error)

	// Get retrieves a request by id. Returns ErrRequestNotFound when absent.
	Get(ctx context.Context, id string) (*Request, error)

	// ListPending returns pending requests ordered by creation time ascending.
	ListPending(ctx context.Context) ([]*Request, error)

	// ListApprovedForDevice returns a device's approved requests, newest first.
	ListApprovedForDevice(ctx context.Context, deviceID string) ([]*Request, error)

	// UpdateIfPending applies a terminal update only when the row is still
	// pending. Returns ErrRequestNotPending when the guard fails, so a
	// concurrent reviewer losing the race gets a clean conflict.
	UpdateIfPending(ctx context.Context, id string, update TerminalUpdate) error

	// DeleteOlderThan deletes rows in the given status whose reference time
	// (reviewedAt, falling back to createdAt) is before cutoff. Returns the
	// number of rows deleted.
	DeleteOlderThan(ctx context.Context, status Status, cutoff time.Time) (int64, error)
}
