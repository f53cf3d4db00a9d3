package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// categoryFiles maps each category to its content file name.
var categoryFiles = []struct {
	Category Category
	File     string
}{
	{CategoryPalette, "palettes.json"},
	{CategoryStyle, "styles.json"},
	{CategoryEffect, "effects.json"},
	{CategoryAddon, "addons.json"},
	{CategoryTheme, "themes.json"},
	{CategoryMood, "moods.json"},
	{CategoryStep, "steps.json"},
	{CategoryTitle, "titles.json"},
	{CategoryCreature, "creatures.json"},
	{CategoryIngredient, "ingredients.json"},
}

type seedEntry struct {
	Label      string   `json:"label"`
	PromptText string   `json:"prompt_text"`
	Tags       []string `json:"tags"`
}

type seedPreset struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	TokenIDs    TokenBundle `json:"token_ids"`
}

// SeedResult summarizes a seeding run.
type SeedResult struct {
	Items   int
	Presets int
}

// Seeder loads dictionary content files into the repository.
type Seeder struct {
	repo   Repository
	logger zerolog.Logger
}

// NewSeeder creates a new content seeder.
func NewSeeder(repo Repository, logger zerolog.Logger) *Seeder {
	return &Seeder{repo: repo, logger: logger}
}

// SeedFromDir upserts every dictionary entry and preset found under dir.
// Existing entries are refreshed and reactivated; nothing is deleted.
// Category files that do not exist are skipped.
func (s *Seeder) SeedFromDir(ctx context.Context, dir string) (*SeedResult, error) {
	result := &SeedResult{}

	for _, cf := range categoryFiles {
		path := filepath.Join(dir, cf.File)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn().Str("file", cf.File).Msg("content file missing, skipping")
				continue
			}
			return nil, fmt.Errorf("read %s: %w", cf.File, err)
		}

		var entries []seedEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cf.File, err)
		}

		for _, entry := range entries {
			item := &Item{
				Category:   cf.Category,
				Label:      entry.Label,
				PromptText: entry.PromptText,
				Tags:       entry.Tags,
			}
			if err := s.repo.UpsertItem(ctx, item); err != nil {
				return nil, fmt.Errorf("upsert %s %q: %w", cf.Category, entry.Label, err)
			}
			result.Items++
		}
	}

	presetsPath := filepath.Join(dir, "presets.json")
	data, err := os.ReadFile(presetsPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Msg("presets.json missing, skipping presets")
			return result, nil
		}
		return nil, fmt.Errorf("read presets.json: %w", err)
	}

	var presets []seedPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse presets.json: %w", err)
	}

	for _, p := range presets {
		preset := &Preset{
			Name:        p.Name,
			Description: p.Description,
			TokenIDs:    p.TokenIDs,
		}
		if err := s.repo.UpsertPreset(ctx, preset); err != nil {
			return nil, fmt.Errorf("upsert preset %q: %w", p.Name, err)
		}
		result.Presets++
	}

	s.logger.Info().
		Int("items", result.Items).
		Int("presets", result.Presets).
		Msg("dictionary seeding complete")

	return result, nil
}
