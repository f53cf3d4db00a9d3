package suggestion

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL suggestion repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new suggestion.
func (r *PostgresRepository) Create(ctx context.Context, s *Suggestion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO suggestions (id, device_id, phrase, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at`,
		s.ID, s.DeviceID, s.Phrase, s.Category, string(s.Status),
	).Scan(&s.CreatedAt)
}

// Get retrieves a suggestion by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Suggestion, error) {
	var s Suggestion
	err := r.pool.QueryRow(ctx,
		`SELECT id, device_id, phrase, category, status, created_at, reviewed_at
		FROM suggestions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.DeviceID, &s.Phrase, &s.Category, &s.Status, &s.CreatedAt, &s.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListPending returns pending suggestions ordered by creation time ascending.
func (r *PostgresRepository) ListPending(ctx context.Context) ([]*Suggestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, device_id, phrase, category, status, created_at, reviewed_at
		FROM suggestions
		WHERE status = $1
		ORDER BY created_at ASC`,
		string(StatusPending),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*Suggestion
	for rows.Next() {
		var s Suggestion
		err := rows.Scan(&s.ID, &s.DeviceID, &s.Phrase, &s.Category, &s.Status, &s.CreatedAt, &s.ReviewedAt)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, &s)
	}

	return suggestions, rows.Err()
}

// RejectIfPending marks a suggestion rejected if it is still pending.
func (r *PostgresRepository) RejectIfPending(ctx context.Context, id string, reviewedAt time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE suggestions SET status = $2, reviewed_at = $3
		WHERE id = $1 AND status = $4`,
		id, string(StatusRejected), reviewedAt, string(StatusPending),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSuggestionNotPending
	}
	return nil
}

// DeletePendingOlderThan deletes pending suggestions created before cutoff.
func (r *PostgresRepository) DeletePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM suggestions WHERE status = $1 AND created_at < $2`,
		string(StatusPending), cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
