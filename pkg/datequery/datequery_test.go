package datequery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

// today is a Wednesday.
var today = models.NewDate(2024, time.May, 8)

func TestNormalizeWeekPhrases(t *testing.T) {
	tests := []struct {
		query string
		start models.Date
		end   models.Date
	}{
		{"this week", models.NewDate(2024, time.May, 6), models.NewDate(2024, time.May, 12)},
		{"next week", models.NewDate(2024, time.May, 13), models.NewDate(2024, time.May, 19)},
		{"last week", models.NewDate(2024, time.April, 29), models.NewDate(2024, time.May, 5)},
		{"who is on-call next week?", models.NewDate(2024, time.May, 13), models.NewDate(2024, time.May, 19)},
		{"WEEK", models.NewDate(2024, time.May, 6), models.NewDate(2024, time.May, 12)},
	}

	for _, tt := range tests {
		rng, err := Normalize(tt.query, today)
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.start, rng.Start, tt.query)
		assert.Equal(t, tt.end, rng.End, tt.query)

		// Every week range is Monday..Sunday spanning seven days.
		assert.Equal(t, time.Monday, rng.Start.Weekday(), tt.query)
		assert.Equal(t, time.Sunday, rng.End.Weekday(), tt.query)
		assert.Equal(t, rng.Start.AddDays(6), rng.End, tt.query)
	}
}

func TestNormalizeSingleDayPhrases(t *testing.T) {
	tests := []struct {
		query  string
		anchor models.Date
	}{
		{"today", today},
		{"tomorrow", models.NewDate(2024, time.May, 9)},
		{"yesterday", models.NewDate(2024, time.May, 7)},
		// Bare weekday: nearest past occurrence, or today itself.
		{"monday", models.NewDate(2024, time.May, 6)},
		{"wednesday", today},
		{"thursday", models.NewDate(2024, time.May, 2)},
		{"this sunday", models.NewDate(2024, time.May, 12)},
		{"next monday", models.NewDate(2024, time.May, 13)},
		{"last friday", models.NewDate(2024, time.May, 3)},
		// Month phrases anchor a single day, they do not expand.
		{"next month", models.NewDate(2024, time.June, 8)},
		{"last month", models.NewDate(2024, time.April, 8)},
	}

	for _, tt := range tests {
		rng, err := Normalize(tt.query, today)
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.anchor, rng.Start, tt.query)
		assert.Equal(t, rng.Start, rng.End, tt.query)
	}
}

func TestNormalizeNextWeekdayOnSameWeekday(t *testing.T) {
	monday := models.NewDate(2024, time.May, 6)

	rng, err := Normalize("next monday", monday)
	require.NoError(t, err)
	assert.Equal(t, models.NewDate(2024, time.May, 13), rng.Start)

	rng, err = Normalize("monday", monday)
	require.NoError(t, err)
	assert.Equal(t, monday, rng.Start)
}

func TestNormalizeLiteralDateFallback(t *testing.T) {
	for _, query := range []string{"2024-05-01", "2024/05/01", "  2024-05-01  "} {
		rng, err := Normalize(query, today)
		require.NoError(t, err, query)
		assert.Equal(t, models.NewDate(2024, time.May, 1), rng.Start, query)
		assert.Equal(t, rng.Start, rng.End, query)
	}
}

func TestNormalizeInvalidQueries(t *testing.T) {
	for _, query := range []string{"", "   ", "banana", "the 5th of never"} {
		_, err := Normalize(query, today)
		assert.ErrorIs(t, err, models.ErrInvalidQuery, "%q", query)
	}
}
