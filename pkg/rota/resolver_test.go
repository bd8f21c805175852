package rota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

func date(day int) models.Date {
	return models.NewDate(2024, time.May, day)
}

var roster = models.Roster{
	{Start: date(6), End: date(12), Primary: "Alice", Secondary: "Bob"},
	{Start: date(13), End: date(19), Primary: "Carol", Secondary: "Alice"},
	{Start: date(20), End: date(26), Primary: "Alice", Secondary: "Dan"},
}

func TestFindByDate(t *testing.T) {
	var r Resolver

	row, err := r.FindByDate(roster, date(8))
	require.NoError(t, err)
	assert.Equal(t, "Alice", row.Primary)
	assert.Equal(t, "Bob", row.Secondary)

	// Boundary dates are inclusive on both ends.
	row, err = r.FindByDate(roster, date(13))
	require.NoError(t, err)
	assert.Equal(t, "Carol", row.Primary)
	row, err = r.FindByDate(roster, date(19))
	require.NoError(t, err)
	assert.Equal(t, "Carol", row.Primary)

	_, err = r.FindByDate(roster, date(28))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindByDateOverlapIsFirstMatch(t *testing.T) {
	overlapping := models.Roster{
		{Start: date(6), End: date(12), Primary: "First", Secondary: "A"},
		{Start: date(10), End: date(16), Primary: "Second", Secondary: "B"},
	}
	var r Resolver

	// Two rows cover May 10; the earlier row in roster order wins every time.
	for i := 0; i < 5; i++ {
		row, err := r.FindByDate(overlapping, date(10))
		require.NoError(t, err)
		assert.Equal(t, "First", row.Primary)
	}

	all := r.FindAllByDate(overlapping, date(10))
	require.Len(t, all, 2)
	assert.Equal(t, "First", all[0].Primary)
	assert.Equal(t, "Second", all[1].Primary)
}

func TestFindUpcomingForPerson(t *testing.T) {
	var r Resolver
	today := date(8)

	upcoming := r.FindUpcomingForPerson(roster, "Alice", today)
	require.Len(t, upcoming, 3)
	assert.Equal(t, date(6), upcoming[0].Start)
	assert.Equal(t, date(13), upcoming[1].Start)
	assert.Equal(t, date(20), upcoming[2].Start)

	// A row that ended before today is excluded; end == today is kept.
	upcoming = r.FindUpcomingForPerson(roster, "Bob", date(12))
	require.Len(t, upcoming, 1)
	upcoming = r.FindUpcomingForPerson(roster, "Bob", date(13))
	assert.Empty(t, upcoming)
}

func TestFindUpcomingForPersonLimit(t *testing.T) {
	r := Resolver{Limit: 1}

	upcoming := r.FindUpcomingForPerson(roster, "Alice", date(8))
	require.Len(t, upcoming, 1)
	assert.Equal(t, date(6), upcoming[0].Start)
}

func TestNameMatchingModes(t *testing.T) {
	var exact Resolver
	assert.Empty(t, exact.FindUpcomingForPerson(roster, "alice", date(8)))
	assert.Empty(t, exact.FindUpcomingForPerson(roster, "Ali", date(8)))

	fold := Resolver{Match: MatchFold}
	assert.Len(t, fold.FindUpcomingForPerson(roster, "alice", date(8)), 3)
	assert.Len(t, fold.FindUpcomingForPerson(roster, "CAROL", date(8)), 1)
}

func TestParseMatchMode(t *testing.T) {
	assert.Equal(t, MatchExact, ParseMatchMode(""))
	assert.Equal(t, MatchExact, ParseMatchMode("exact"))
	assert.Equal(t, MatchFold, ParseMatchMode("fold"))
	assert.Equal(t, MatchFold, ParseMatchMode(" Fold "))
}
