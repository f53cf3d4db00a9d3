package suggestion_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlechef/doodlechef/internal/suggestion"
)

func newService() (*suggestion.Service, *suggestion.InMemoryRepository) {
	repo := suggestion.NewInMemoryRepository()
	return suggestion.NewService(repo, zerolog.Nop()), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newService()

	category := "creature"
	created, err := svc.Create(context.Background(), suggestion.CreateInput{
		DeviceID: uuid.NewString(),
		Phrase:   "  a dragon made of pancakes  ",
		Category: &category,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, suggestion.StatusPending, created.Status)
	assert.Equal(t, "a dragon made of pancakes", created.Phrase, "phrase should be trimmed")
	require.NotNil(t, created.Category)
	assert.Equal(t, "creature", *created.Category)
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name      string
		input     suggestion.CreateInput
		wantField string
	}{
		{
			name:      "bad device id",
			input:     suggestion.CreateInput{DeviceID: "nope", Phrase: "tasty"},
			wantField: "deviceId",
		},
		{
			name:      "empty phrase",
			input:     suggestion.CreateInput{DeviceID: uuid.NewString(), Phrase: "   "},
			wantField: "phrase",
		},
		{
			name: "phrase too long",
			input: suggestion.CreateInput{
				DeviceID: uuid.NewString(),
				Phrase:   strings.Repeat("a", suggestion.MaxPhraseLength+1),
			},
			wantField: "phrase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)

			var verr *suggestion.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

func TestService_Create_MaxLengthPhraseAccepted(t *testing.T) {
	svc, _ := newService()

	created, err := svc.Create(context.Background(), suggestion.CreateInput{
		DeviceID: uuid.NewString(),
		Phrase:   strings.Repeat("a", suggestion.MaxPhraseLength),
	})
	require.NoError(t, err)
	assert.Len(t, created.Phrase, suggestion.MaxPhraseLength)
}

func TestService_Create_LengthCountsRunesNotBytes(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	// 60 runes but 120 bytes: still within the limit.
	created, err := svc.Create(ctx, suggestion.CreateInput{
		DeviceID: uuid.NewString(),
		Phrase:   strings.Repeat("ü", suggestion.MaxPhraseLength),
	})
	require.NoError(t, err)
	assert.Equal(t, suggestion.MaxPhraseLength, utf8.RuneCountInString(created.Phrase))

	// One rune over the limit is rejected.
	_, err = svc.Create(ctx, suggestion.CreateInput{
		DeviceID: uuid.NewString(),
		Phrase:   strings.Repeat("ü", suggestion.MaxPhraseLength+1),
	})
	var verr *suggestion.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "phrase", verr.Fields[0].Field)
}

func TestService_Reject(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, suggestion.CreateInput{
		DeviceID: uuid.NewString(),
		Phrase:   "slime milkshake",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, created.ID))

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, suggestion.StatusRejected, stored.Status)
	assert.NotNil(t, stored.ReviewedAt)

	// Second reject hits the not-pending guard.
	assert.ErrorIs(t, svc.Reject(ctx, created.ID), suggestion.ErrSuggestionNotPending)
}

func TestService_Reject_NotFound(t *testing.T) {
	svc, _ := newService()

	err := svc.Reject(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, suggestion.ErrSuggestionNotFound)
}

func TestService_Pending(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, suggestion.CreateInput{DeviceID: uuid.NewString(), Phrase: "one"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, suggestion.CreateInput{DeviceID: uuid.NewString(), Phrase: "two"})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, first.ID))

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}
