package prompt_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlechef/doodlechef/internal/dictionary"
	"github.com/doodlechef/doodlechef/internal/prompt"
)

func seededRepository(t *testing.T) *dictionary.InMemoryRepository {
	t.Helper()

	repo := dictionary.NewInMemoryRepository()
	ctx := context.Background()

	items := []dictionary.Item{
		{Category: dictionary.CategoryPalette, Label: "sunset", PromptText: "warm sunset palette"},
		{Category: dictionary.CategoryStyle, Label: "crayon", PromptText: "crayon drawing style"},
		{Category: dictionary.CategoryTheme, Label: "picnic", PromptText: "picnic in the park"},
		{Category: dictionary.CategoryMood, Label: "happy", PromptText: "cheerful and bright"},
		{Category: dictionary.CategoryTitle, Label: "chef special", PromptText: "titled Chef Special"},
		{Category: dictionary.CategoryCreature, Label: "axolotl", PromptText: "an adorable pink axolotl"},
		{Category: dictionary.CategoryCreature, Label: "ghost axolotl", PromptText: "an axolotl with a tiny ghost friend", Tags: []string{"Spooky-Cute"}},
		{Category: dictionary.CategoryEffect, Label: "sparkles", PromptText: "scattered sparkles"},
		{Category: dictionary.CategoryEffect, Label: "confetti", PromptText: "falling confetti"},
		{Category: dictionary.CategoryAddon, Label: "party hat", PromptText: "wearing a tiny party hat"},
		{Category: dictionary.CategoryStep, Label: "mix", PromptText: "a mixing step"},
		{Category: dictionary.CategoryIngredient, Label: "moon sugar", PromptText: "a pinch of moon sugar"},
	}
	for i := range items {
		require.NoError(t, repo.UpsertItem(ctx, &items[i]))
	}

	return repo
}

func baseSelection() prompt.Selection {
	return prompt.Selection{
		Palette: "sunset",
		Style:   "crayon",
		Theme:   "picnic",
		Mood:    "happy",
	}
}

func TestComposer_Build_RequiredOnly(t *testing.T) {
	composer := prompt.NewComposer(seededRepository(t))

	result, err := composer.Build(context.Background(), baseSelection())
	require.NoError(t, err)

	assert.Equal(t, "warm sunset palette, crayon drawing style, picnic in the park, "+
		"cheerful and bright, "+prompt.SafetySuffix, result.ComposedPrompt)
	assert.Equal(t, "sunset", result.TokenIDs.Palette)
	assert.Equal(t, "happy", result.TokenIDs.Mood)
	assert.Empty(t, result.TokenIDs.Effects)
}

func TestComposer_Build_FixedOrder(t *testing.T) {
	composer := prompt.NewComposer(seededRepository(t))

	sel := baseSelection()
	sel.Title = "chef special"
	sel.Creature = "axolotl"
	sel.Effects = []string{"sparkles", "confetti"}
	sel.Addons = []string{"party hat"}
	sel.Steps = []string{"mix"}
	sel.Ingredients = []string{"moon sugar"}

	result, err := composer.Build(context.Background(), sel)
	require.NoError(t, err)

	// Singles first, then effects, addons, steps, ingredients, then the
	// suffix last.
	want := strings.Join([]string{
		"warm sunset palette",
		"crayon drawing style",
		"picnic in the park",
		"cheerful and bright",
		"titled Chef Special",
		"an adorable pink axolotl",
		"scattered sparkles",
		"falling confetti",
		"wearing a tiny party hat",
		"a mixing step",
		"a pinch of moon sugar",
		prompt.SafetySuffix,
	}, ", ")
	assert.Equal(t, want, result.ComposedPrompt)
}

func TestComposer_Build_SpookyTagAddsGuardrail(t *testing.T) {
	composer := prompt.NewComposer(seededRepository(t))

	sel := baseSelection()
	sel.Creature = "ghost axolotl"

	result, err := composer.Build(context.Background(), sel)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(result.ComposedPrompt, prompt.SpookyCuteExtra))
	assert.Contains(t, result.ComposedPrompt, prompt.SafetySuffix+", "+prompt.SpookyCuteExtra)
}

func TestComposer_Build_NoSpookyTagNoGuardrail(t *testing.T) {
	composer := prompt.NewComposer(seededRepository(t))

	sel := baseSelection()
	sel.Creature = "axolotl"

	result, err := composer.Build(context.Background(), sel)
	require.NoError(t, err)

	assert.NotContains(t, result.ComposedPrompt, prompt.SpookyCuteExtra)
	assert.True(t, strings.HasSuffix(result.ComposedPrompt, prompt.SafetySuffix))
}

func TestComposer_Build_UnknownToken(t *testing.T) {
	composer := prompt.NewComposer(seededRepository(t))

	sel := baseSelection()
	sel.Theme = "volcano"

	_, err := composer.Build(context.Background(), sel)
	require.Error(t, err)

	var unknownErr *prompt.UnknownTokenError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, dictionary.CategoryTheme, unknownErr.Category)
	assert.Equal(t, "volcano", unknownErr.Label)
}

func TestComposer_Build_UnknownListEntry(t *testing.T) {
	composer := prompt.NewComposer(seededRepository(t))

	sel := baseSelection()
	sel.Effects = []string{"sparkles", "lasers"}

	_, err := composer.Build(context.Background(), sel)

	var unknownErr *prompt.UnknownTokenError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, dictionary.CategoryEffect, unknownErr.Category)
	assert.Equal(t, "lasers", unknownErr.Label)
}

// wrappingRepository decorates lookups with extra error context, the way a
// storage layer annotating its failures would.
type wrappingRepository struct {
	dictionary.Repository
}

func (r wrappingRepository) Resolve(ctx context.Context, category dictionary.Category, label string) (*dictionary.Item, error) {
	item, err := r.Repository.Resolve(ctx, category, label)
	if err != nil {
		return nil, fmt.Errorf("resolve %s/%s: %w", category, label, err)
	}
	return item, nil
}

func TestComposer_Build_UnknownTokenThroughWrappedError(t *testing.T) {
	composer := prompt.NewComposer(wrappingRepository{Repository: seededRepository(t)})

	sel := baseSelection()
	sel.Mood = "grumpy"

	_, err := composer.Build(context.Background(), sel)

	var unknownErr *prompt.UnknownTokenError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, dictionary.CategoryMood, unknownErr.Category)
	assert.Equal(t, "grumpy", unknownErr.Label)
}

func TestHasSpookyTag(t *testing.T) {
	assert.True(t, prompt.HasSpookyTag([]string{"cute", "HALLOWEEN"}))
	assert.True(t, prompt.HasSpookyTag([]string{"Spooky-Cute"}))
	assert.False(t, prompt.HasSpookyTag([]string{"cute", "pastel"}))
	assert.False(t, prompt.HasSpookyTag(nil))
}
