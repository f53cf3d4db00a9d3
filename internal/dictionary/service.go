package dictionary

import (
	"context"

	"github.com/doodlechef/doodlechef/internal/api/models"
)

// Service provides read access to the published dictionary and presets.
type Service struct {
	repo Repository
}

// NewService creates a new dictionary service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the active dictionary items for the kid-facing client.
// Prompt text is never included; clients only ever see labels and tags.
func (s *Service) List(ctx context.Context) (*models.DictionaryList, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.DictionaryItem, 0, len(items))
	for _, item := range items {
		result = append(result, models.DictionaryItem{
			ID:       item.ID,
			Category: string(item.Category),
			Label:    item.Label,
			Tags:     item.Tags,
		})
	}

	return &models.DictionaryList{Items: result}, nil
}

// Presets returns the curated token bundles.
func (s *Service) Presets(ctx context.Context) (*models.PresetList, error) {
	presets, err := s.repo.ListPresets(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Preset, 0, len(presets))
	for _, preset := range presets {
		result = append(result, models.Preset{
			ID:          preset.ID,
			Name:        preset.Name,
			Description: preset.Description,
			TokenIDs:    toAPITokenIDs(preset.TokenIDs),
		})
	}

	return &models.PresetList{Presets: result}, nil
}

func toAPITokenIDs(b TokenBundle) models.TokenIDs {
	return models.TokenIDs{
		Palette:     b.Palette,
		Style:       b.Style,
		Theme:       b.Theme,
		Mood:        b.Mood,
		Title:       b.Title,
		Creature:    b.Creature,
		Effects:     b.Effects,
		Addons:      b.Addons,
		Steps:       b.Steps,
		Ingredients: b.Ingredients,
	}
}
