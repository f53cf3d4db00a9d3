package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlechef/doodlechef/internal/api/models"
)

func TestTimestamp_RoundTrip(t *testing.T) {
	original := models.Timestamp(time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-29T10:30:00Z"`, string(data))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Time().Equal(decoded.Time()))
}

func TestTimestamp_UnmarshalNull(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &ts))
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_UnmarshalRejectsNonString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "number", input: `5`},
		{name: "empty string token", input: `"`},
		{name: "object", input: `{}`},
		{name: "bad format", input: `"yesterday"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts models.Timestamp
			assert.Error(t, json.Unmarshal([]byte(tt.input), &ts))
		})
	}
}
