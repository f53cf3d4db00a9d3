// Package dictionary manages the curated token dictionary and presets.
// Every prompt fragment a child can select lives here; free text never
// reaches the image-generation prompt.
package dictionary

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrItemNotFound = errors.New("dictionary item not found")
)

// Category identifies a dictionary token category.
type Category string

// Token categories, in composition order.
const (
	CategoryPalette    Category = "palette"
	CategoryStyle      Category = "style"
	CategoryTheme      Category = "theme"
	CategoryMood       Category = "mood"
	CategoryTitle      Category = "title"
	CategoryCreature   Category = "creature"
	CategoryEffect     Category = "effect"
	CategoryAddon      Category = "addon"
	CategoryStep       Category = "step"
	CategoryIngredient Category = "ingredient"
)

// Item is a single dictionary entry: a child-visible label that resolves to
// server-side prompt text plus descriptive tags.
type Item struct {
	ID         string
	Category   Category
	Label      string
	PromptText string
	Tags       []string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TokenBundle is a named set of token labels, stored as JSON.
type TokenBundle struct {
	Palette     string   `json:"palette"`
	Style       string   `json:"style"`
	Theme       string   `json:"theme"`
	Mood        string   `json:"mood"`
	Title       string   `json:"title,omitempty"`
	Creature    string   `json:"creature,omitempty"`
	Effects     []string `json:"effects,omitempty"`
	Addons      []string `json:"addons,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// Preset is a curated token bundle offered as a starting point.
type Preset struct {
	ID          string
	Name        string
	Description string
	TokenIDs    TokenBundle
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
