// Package datequery normalizes free-text date phrases ("next week",
// "monday", "2024-05-01") into closed calendar-date ranges. It is a pure
// keyword-table layer: the caller supplies today's date, so results are
// deterministic and testable.
package datequery

import (
	"regexp"
	"strings"
	"time"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

// phrasePattern finds the first relative-date phrase: an optional modifier
// followed by a unit, weekday name or day keyword.
var phrasePattern = regexp.MustCompile(
	`(this|next|last)?\s?(week|month|monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow|yesterday)`,
)

// punctuation matches everything outside word characters and whitespace.
var punctuation = regexp.MustCompile(`[^a-z0-9\s]`)

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// literalLayouts are tried when no keyword phrase is present. The compact
// form covers ISO dates whose hyphens were removed by punctuation stripping.
var literalLayouts = []string{"2006-01-02", "2006/01/02", "20060102"}

// Normalize turns a raw query into an inclusive date range relative to
// today. Phrases with the unit "week" expand to the enclosing Monday-start
// week; every other phrase collapses to a single day. Inputs with no
// recognizable phrase fall back to literal date parsing before failing with
// models.ErrInvalidQuery.
//
// A weekday name with no modifier resolves to the nearest past occurrence,
// or today itself ("monday" asked on a Monday is that same day). "next" is
// strictly after today, "last" strictly before, and "this" picks the weekday
// inside the current Monday-start week.
func Normalize(raw string, today models.Date) (models.DateRange, error) {
	query := strings.ToLower(strings.TrimSpace(raw))
	if query == "" {
		return models.DateRange{}, models.ErrInvalidQuery
	}

	// "on-call"/"oncall" would otherwise bleed into the keyword scan once
	// punctuation is gone.
	query = strings.ReplaceAll(query, "on-call", "on call")
	query = strings.ReplaceAll(query, "oncall", "on call")
	cleaned := strings.TrimSpace(punctuation.ReplaceAllString(query, ""))

	m := phrasePattern.FindStringSubmatch(cleaned)
	if m == nil {
		if d, ok := parseLiteral(query, cleaned); ok {
			return models.SingleDay(d), nil
		}
		return models.DateRange{}, models.ErrInvalidQuery
	}

	modifier, unit := m[1], m[2]
	anchor := resolveAnchor(modifier, unit, today)
	if unit == "week" {
		return weekOf(anchor), nil
	}
	return models.SingleDay(anchor), nil
}

// parseLiteral tries the raw (still punctuated) query first, then the
// cleaned form for compact dates.
func parseLiteral(query, cleaned string) (models.Date, bool) {
	for _, candidate := range []string{query, cleaned} {
		for _, layout := range literalLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return models.DateOf(t), true
			}
		}
	}
	return models.Date{}, false
}

func resolveAnchor(modifier, unit string, today models.Date) models.Date {
	switch unit {
	case "today":
		return today
	case "tomorrow":
		return today.AddDays(1)
	case "yesterday":
		return today.AddDays(-1)
	case "week":
		return today.AddDays(7 * modifierOffset(modifier))
	case "month":
		return today.AddMonths(modifierOffset(modifier))
	}
	return resolveWeekday(modifier, weekdayNames[unit], today)
}

func modifierOffset(modifier string) int {
	switch modifier {
	case "next":
		return 1
	case "last":
		return -1
	}
	return 0
}

func resolveWeekday(modifier string, target time.Weekday, today models.Date) models.Date {
	switch modifier {
	case "this":
		// The target weekday inside the current Monday-start week.
		weekStart := today.AddDays(-mondayIndex(today.Weekday()))
		return weekStart.AddDays(mondayIndex(target))
	case "next":
		delta := (int(target) - int(today.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDays(delta)
	case "last":
		delta := (int(today.Weekday()) - int(target) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDays(-delta)
	}
	// Bare weekday: nearest past occurrence, or today.
	delta := (int(today.Weekday()) - int(target) + 7) % 7
	return today.AddDays(-delta)
}

// mondayIndex maps a weekday to its offset from Monday (Monday=0..Sunday=6).
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// weekOf expands an anchor date to its Monday..Sunday week.
func weekOf(anchor models.Date) models.DateRange {
	start := anchor.AddDays(-mondayIndex(anchor.Weekday()))
	return models.DateRange{Start: start, End: start.AddDays(6)}
}
