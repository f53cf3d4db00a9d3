package dictionary

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is an in-memory implementation of Repository for testing.
type InMemoryRepository struct {
	mu      sync.RWMutex
	items   map[itemKey]*Item
	presets map[string]*Preset
}

type itemKey struct {
	category Category
	label    string
}

// NewInMemoryRepository creates a new in-memory dictionary repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items:   make(map[itemKey]*Item),
		presets: make(map[string]*Preset),
	}
}

// Resolve looks up an active item by category and label.
func (r *InMemoryRepository) Resolve(_ context.Context, category Category, label string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemKey{category, label}]
	if !ok || !item.IsActive {
		return nil, ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

// ListActive returns all active items ordered by category, then label.
func (r *InMemoryRepository) ListActive(_ context.Context) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*Item
	for _, item := range r.items {
		if item.IsActive {
			copied := *item
			items = append(items, &copied)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Label < items[j].Label
	})
	return items, nil
}

// UpsertItem creates or updates an item keyed by (category, label).
func (r *InMemoryRepository) UpsertItem(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.IsActive = true
	item.UpdatedAt = time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = item.UpdatedAt
	}
	copied := *item
	r.items[itemKey{item.Category, item.Label}] = &copied
	return nil
}

// Deactivate marks an item inactive, hiding it from resolution and listing.
func (r *InMemoryRepository) Deactivate(category Category, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item, ok := r.items[itemKey{category, label}]; ok {
		item.IsActive = false
	}
}

// ListPresets returns all presets ordered by name.
func (r *InMemoryRepository) ListPresets(_ context.Context) ([]*Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var presets []*Preset
	for _, preset := range r.presets {
		copied := *preset
		presets = append(presets, &copied)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// UpsertPreset creates or updates a preset keyed by name.
func (r *InMemoryRepository) UpsertPreset(_ context.Context, preset *Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if preset.ID == "" {
		preset.ID = uuid.New().String()
	}
	preset.UpdatedAt = time.Now()
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = preset.UpdatedAt
	}
	copied := *preset
	r.presets[preset.Name] = &copied
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
