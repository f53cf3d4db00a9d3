package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doodlechef/doodlechef/internal/database"
	"github.com/doodlechef/doodlechef/internal/prompt"
)

// DB is the slice of *pgxpool.Pool the repository uses.
type DB interface {
	database.TxBeginner
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool DB
}

// NewPostgresRepository creates a new PostgreSQL generation repository.
func NewPostgresRepository(pool DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ReservePending runs the quota counts and the insert inside one SERIALIZABLE
// transaction, retried on serialization conflicts.
func (r *PostgresRepository) ReservePending(ctx context.Context, req *Request, deviceLimit, globalLimit int, since time.Time) (*ReserveOutcome, error) {
	var outcome *ReserveOutcome

	err := database.RunSerializable(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var deviceCount, globalCount int

		err := tx.QueryRow(ctx,
			`SELECT count(*) FROM generation_requests WHERE device_id = $1 AND created_at >= $2`,
			req.DeviceID, since,
		).Scan(&deviceCount)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`SELECT count(*) FROM generation_requests WHERE created_at >= $1`,
			since,
		).Scan(&globalCount)
		if err != nil {
			return err
		}

		if deviceCount >= deviceLimit {
			outcome = &ReserveOutcome{Allowed: false, DeniedScope: QuotaScopeDevice}
			return nil
		}
		if globalCount >= globalLimit {
			outcome = &ReserveOutcome{Allowed: false, DeniedScope: QuotaScopeGlobal}
			return nil
		}

		tokens, err := json.Marshal(req.TokenIDs)
		if err != nil {
			return fmt.Errorf("encode token ids: %w", err)
		}

		var createdAt time.Time
		err = tx.QueryRow(ctx,
			`INSERT INTO generation_requests
				(id, device_id, token_ids, composed_prompt, status, moderation_input, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			RETURNING created_at`,
			req.ID, req.DeviceID, tokens, req.ComposedPrompt, string(StatusPending), req.ModerationInput,
		).Scan(&createdAt)
		if err != nil {
			return err
		}

		created := *req
		created.Status = StatusPending
		created.CreatedAt = createdAt
		outcome = &ReserveOutcome{
			Allowed:    true,
			Record:     &created,
			DeviceUsed: deviceCount + 1,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrSerializationRetriesExceeded) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	return outcome, nil
}

// CountForDevice returns the device's request count since the given time.
func (r *PostgresRepository) CountForDevice(ctx context.Context, deviceID string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM generation_requests WHERE device_id = $1 AND created_at >= $2`,
		deviceID, since,
	).Scan(&count)
	return count, err
}

const requestColumns = `
	id, device_id, token_ids, composed_prompt, status,
	image_data, moderation_input, moderation_output, created_at, reviewed_at
`

// Get retrieves a request by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Request, error) {
	query := `SELECT` + requestColumns + `FROM generation_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListPending returns pending requests ordered by creation time ascending.
func (r *PostgresRepository) ListPending(ctx context.Context) ([]*Request, error) {
	query := `SELECT` + requestColumns + `
		FROM generation_requests
		WHERE status = $1
		ORDER BY created_at ASC`

	return r.list(ctx, query, string(StatusPending))
}

// ListApprovedForDevice returns a device's approved requests, newest first.
func (r *PostgresRepository) ListApprovedForDevice(ctx context.Context, deviceID string) ([]*Request, error) {
	query := `SELECT` + requestColumns + `
		FROM generation_requests
		WHERE device_id = $1 AND status = $2
		ORDER BY created_at DESC`

	return r.list(ctx, query, deviceID, string(StatusApproved))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func scanRequest(row pgx.Row) (*Request, error) {
	var (
		req    Request
		tokens []byte
	)
	err := row.Scan(
		&req.ID,
		&req.DeviceID,
		&tokens,
		&req.ComposedPrompt,
		&req.Status,
		&req.ImageData,
		&req.ModerationInput,
		&req.ModerationOutput,
		&req.CreatedAt,
		&req.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	var tokenIDs prompt.TokenIDs
	if err := json.Unmarshal(tokens, &tokenIDs); err != nil {
		return nil, fmt.Errorf("decode token ids for %s: %w", req.ID, err)
	}
	req.TokenIDs = tokenIDs

	return &req, nil
}

// UpdateIfPending applies a terminal update guarded on the row still being
// pending. The guard lives in the WHERE clause, not in an earlier read, so
// the losing side of a concurrent approve/reject race fails cleanly.
func (r *PostgresRepository) UpdateIfPending(ctx context.Context, id string, update TerminalUpdate) error {
	query := `
		UPDATE generation_requests SET
			status = $2,
			image_data = $3,
			moderation_output = COALESCE($4, moderation_output),
			reviewed_at = $5
		WHERE id = $1 AND status = $6
	`

	result, err := r.pool.Exec(ctx, query,
		id,
		string(update.Status),
		update.ImageData,
		update.ModerationOutput,
		update.ReviewedAt,
		string(StatusPending),
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRequestNotPending
	}

	return nil
}

// DeleteOlderThan deletes rows in the given status past the cutoff, measured
// from reviewed_at with created_at as fallback.
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, status Status, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM generation_requests
		WHERE status = $1 AND COALESCE(reviewed_at, created_at) < $2
	`

	result, err := r.pool.Exec(ctx, query, string(status), cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
