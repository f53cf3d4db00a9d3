// Package prompt composes the image-generation prompt from dictionary tokens.
//
// Composition is deterministic: tokens resolve in a fixed order, fragments are
// comma-joined, and the safety suffix always terminates the prompt. The
// composed string is server-side only; clients never see it.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doodlechef/doodlechef/internal/dictionary"
)

// SafetySuffix is appended to every composed prompt.
const SafetySuffix = "kid-safe, G-rated, cartoon illustration only, no text overlays, " +
	"no realistic humans, no scary imagery, no weapons, no gore, " +
	"no nudity, cute and friendly, recipe card layout, clear sections"

// SpookyCuteExtra is appended after the safety suffix when spooky-leaning
// tokens are present, to keep halloween-ish combos gentle.
const SpookyCuteExtra = "NOT scary, NOT horror, soft moonlight, smiling faces, " +
	"round shapes, pastel accents, cozy and friendly"

// spookyTags are the tag values that trigger SpookyCuteExtra.
var spookyTags = []string{"spooky", "spooky-cute", "halloween", "ghost"}

// Selection is a validated token selection. The caller enforces cardinality
// limits before composition; the composer only resolves labels.
type Selection struct {
	Palette     string
	Style       string
	Theme       string
	Mood        string
	Title       string
	Creature    string
	Effects     []string
	Addons      []string
	Steps       []string
	Ingredients []string
}

// TokenIDs records the labels actually supplied, for display and audit.
// Values are the child's chosen labels, never the resolved prompt text.
type TokenIDs struct {
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

// Result is the outcome of a successful composition.
type Result struct {
	ComposedPrompt string
	TokenIDs       TokenIDs
}

// UnknownTokenError reports a label that did not resolve to an active
// dictionary item. It indicates stale or tampered client input.
type UnknownTokenError struct {
	Category dictionary.Category
	Label    string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown %s token: %q", e.Category, e.Label)
}

// Resolver is the dictionary lookup the composer depends on.
type Resolver interface {
	Resolve(ctx context.Context, category dictionary.Category, label string) (*dictionary.Item, error)
}

// Composer builds prompts from token selections.
type Composer struct {
	resolver Resolver
}

// NewComposer creates a new Composer backed by the given resolver.
func NewComposer(resolver Resolver) *Composer {
	return &Composer{resolver: resolver}
}

// Build resolves every label in the selection and assembles the final prompt.
// Resolution order is fixed: palette, style, theme, mood, title, creature,
// then effects, addons, steps, ingredients in caller-supplied order.
func (c *Composer) Build(ctx context.Context, sel Selection) (*Result, error) {
	var (
		fragments []string
		allTags   []string
	)

	resolve := func(category dictionary.Category, label string) error {
		item, err := c.resolver.Resolve(ctx, category, label)
		if err != nil {
			if errors.Is(err, dictionary.ErrItemNotFound) {
				return &UnknownTokenError{Category: category, Label: label}
			}
			return err
		}
		fragments = append(fragments, item.PromptText)
		allTags = append(allTags, item.Tags...)
		return nil
	}

	required := []struct {
		category dictionary.Category
		label    string
	}{
		{dictionary.CategoryPalette, sel.Palette},
		{dictionary.CategoryStyle, sel.Style},
		{dictionary.CategoryTheme, sel.Theme},
		{dictionary.CategoryMood, sel.Mood},
	}
	for _, token := range required {
		if err := resolve(token.category, token.label); err != nil {
			return nil, err
		}
	}

	if sel.Title != "" {
		if err := resolve(dictionary.CategoryTitle, sel.Title); err != nil {
			return nil, err
		}
	}
	if sel.Creature != "" {
		if err := resolve(dictionary.CategoryCreature, sel.Creature); err != nil {
			return nil, err
		}
	}

	arrays := []struct {
		category dictionary.Category
		labels   []string
	}{
		{dictionary.CategoryEffect, sel.Effects},
		{dictionary.CategoryAddon, sel.Addons},
		{dictionary.CategoryStep, sel.Steps},
		{dictionary.CategoryIngredient, sel.Ingredients},
	}
	for _, field := range arrays {
		for _, label := range field.labels {
			if err := resolve(field.category, label); err != nil {
				return nil, err
			}
		}
	}

	fragments = append(fragments, SafetySuffix)
	if HasSpookyTag(allTags) {
		fragments = append(fragments, SpookyCuteExtra)
	}

	return &Result{
		ComposedPrompt: strings.Join(fragments, ", "),
		TokenIDs: TokenIDs{
			Palette:     sel.Palette,
			Style:       sel.Style,
			Theme:       sel.Theme,
			Mood:        sel.Mood,
			Title:       sel.Title,
			Creature:    sel.Creature,
			Effects:     sel.Effects,
			Addons:      sel.Addons,
			Steps:       sel.Steps,
			Ingredients: sel.Ingredients,
		},
	}, nil
}

// HasSpookyTag reports whether any tag matches the spooky indicator list,
// case-insensitively.
func HasSpookyTag(tags []string) bool {
	for _, tag := range tags {
		lowered := strings.ToLower(tag)
		for _, spooky := range spookyTags {
			if lowered == spooky {
				return true
			}
		}
	}
	return false
}
