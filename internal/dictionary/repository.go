package dictionary

import "context"

// Repository defines storage operations for dictionary items and presets.
type Repository interface {
	// Resolve looks up an active item by category and label.
	// Returns ErrItemNotFound when no active item matches.
	Resolve(ctx context.Context, category Category, label string) (*Item, error)

	// ListActive returns all active items ordered by category, then label.
	ListActive(ctx context.Context) ([]*Item, error)

	// UpsertItem creates or updates an item keyed by (category, label),
	// reactivating it if it was inactive.
	UpsertItem(ctx context.Context, item *Item) error

	// ListPresets returns all presets ordered by name.
	ListPresets(ctx context.Context) ([]*Preset, error)

	// UpsertPreset creates or updates a preset keyed by name.
	UpsertPreset(ctx context.Context, preset *Preset) error
}
