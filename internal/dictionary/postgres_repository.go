package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL dictionary repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Resolve looks up an active item by category and label.
func (r *PostgresRepository) Resolve(ctx context.Context, category Category, label string) (*Item, error) {
	query := `
		SELECT id, category, label, prompt_text, tags, is_active, created_at, updated_at
		FROM dictionary_items
		WHERE category = $1 AND label = $2 AND is_active
	`

	var item Item
	err := r.pool.QueryRow(ctx, query, string(category), label).Scan(
		&item.ID,
		&item.Category,
		&item.Label,
		&item.PromptText,
		&item.Tags,
		&item.IsActive,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return &item, nil
}

// ListActive returns all active items ordered by category, then label.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Item, error) {
	query := `
		SELECT id, category, label, prompt_text, tags, is_active, created_at, updated_at
		FROM dictionary_items
		WHERE is_active
		ORDER BY category ASC, label ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.Category,
			&item.Label,
			&item.PromptText,
			&item.Tags,
			&item.IsActive,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// UpsertItem creates or updates an item keyed by (category, label).
func (r *PostgresRepository) UpsertItem(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()

	query := `
		INSERT INTO dictionary_items (id, category, label, prompt_text, tags, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (category, label) DO UPDATE SET
			prompt_text = EXCLUDED.prompt_text,
			tags = EXCLUDED.tags,
			is_active = TRUE,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		string(item.Category),
		item.Label,
		item.PromptText,
		item.Tags,
		now,
	)
	return err
}

// ListPresets returns all presets ordered by name.
func (r *PostgresRepository) ListPresets(ctx context.Context) ([]*Preset, error) {
	query := `
		SELECT id, name, description, token_ids, created_at, updated_at
		FROM presets
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		var (
			preset Preset
			tokens []byte
		)
		err := rows.Scan(
			&preset.ID,
			&preset.Name,
			&preset.Description,
			&tokens,
			&preset.CreatedAt,
			&preset.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(tokens, &preset.TokenIDs); err != nil {
			return nil, fmt.Errorf("decode preset %s token ids: %w", preset.ID, err)
		}
		presets = append(presets, &preset)
	}

	return presets, rows.Err()
}

// UpsertPreset creates or updates a preset keyed by name.
func (r *PostgresRepository) UpsertPreset(ctx context.Context, preset *Preset) error {
	if preset.ID == "" {
		preset.ID = uuid.New().String()
	}
	now := time.Now()

	tokens, err := json.Marshal(preset.TokenIDs)
	if err != nil {
		return fmt.Errorf("encode preset token ids: %w", err)
	}

	query := `
		INSERT INTO presets (id, name, description, token_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			token_ids = EXCLUDED.token_ids,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		preset.ID,
		preset.Name,
		preset.Description,
		tokens,
		now,
	)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
