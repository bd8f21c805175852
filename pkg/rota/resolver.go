// Package rota resolves on-call lookups against a parsed roster.
package rota

import (
	"strings"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

// MatchMode selects how person names are compared.
type MatchMode int

const (
	// MatchExact compares names byte-for-byte (case-sensitive). Default.
	MatchExact MatchMode = iota
	// MatchFold matches case-insensitively on substrings, for chat users
	// who type "alice" against a roster cell "Alice Smith".
	MatchFold
)

// ParseMatchMode maps a config string onto a MatchMode. Unknown values fall
// back to exact matching.
func ParseMatchMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), "fold") {
		return MatchFold
	}
	return MatchExact
}

// Resolver answers date and person lookups over a roster snapshot. The
// zero value resolves with exact name matching and an unbounded upcoming
// limit.
type Resolver struct {
	// Match controls person-name comparison.
	Match MatchMode
	// Limit caps FindUpcomingForPerson results; <= 0 means unbounded.
	Limit int
}

// FindByDate returns the first row, in roster order, whose inclusive period
// covers target. Overlapping rows are resolved first-match: the earlier row
// in the source sheet always wins, deterministically.
func (r Resolver) FindByDate(roster models.Roster, target models.Date) (models.RosterRow, error) {
	for _, row := range roster {
		if row.Covers(target) {
			return row, nil
		}
	}
	return models.RosterRow{}, models.ErrNotFound
}

// FindAllByDate returns every row covering target, preserving roster order.
// An empty result is not an error here; callers that want the first-match
// semantics use FindByDate.
func (r Resolver) FindAllByDate(roster models.Roster, target models.Date) []models.RosterRow {
	var matches []models.RosterRow
	for _, row := range roster {
		if row.Covers(target) {
			matches = append(matches, row)
		}
	}
	return matches
}

// FindUpcomingForPerson returns rows that have not yet ended (end >= today)
// where the person is primary or secondary, in roster order, capped at
// r.Limit when it is positive.
func (r Resolver) FindUpcomingForPerson(roster models.Roster, person string, today models.Date) []models.RosterRow {
	var upcoming []models.RosterRow
	for _, row := range roster {
		if !row.End.OnOrAfter(today) {
			continue
		}
		if !r.matches(row.Primary, person) && !r.matches(row.Secondary, person) {
			continue
		}
		upcoming = append(upcoming, row)
		if r.Limit > 0 && len(upcoming) == r.Limit {
			break
		}
	}
	return upcoming
}

func (r Resolver) matches(cell, person string) bool {
	if r.Match == MatchFold {
		return strings.Contains(strings.ToLower(cell), strings.ToLower(strings.TrimSpace(person)))
	}
	return cell == person
}
