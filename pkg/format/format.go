// Package format renders resolver results for the two caller contexts: the
// structured JSON API and Slack chat text. Both views are produced from the
// same underlying rows so they can never drift apart.
package format

import (
	"fmt"
	"strings"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

// Placeholder stands in for a missing name so chat output never silently
// drops a field.
const Placeholder = "(unassigned)"

// Names pairs the responders of one assignment.
type Names struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// DateLookup is the api-mode body for a date query.
type DateLookup struct {
	Start models.Date `json:"start"`
	End   models.Date `json:"end"`
	Names Names       `json:"names"`
}

// Slot is one upcoming assignment in a person lookup.
type Slot struct {
	Start     models.Date `json:"start"`
	End       models.Date `json:"end"`
	Primary   string      `json:"primary"`
	Secondary string      `json:"secondary"`
}

// PersonLookup is the api-mode body for a person query.
type PersonLookup struct {
	Name     string `json:"name"`
	Upcoming []Slot `json:"upcoming_oncall"`
}

// DateLookupResult builds the api-mode record for a matched row, preserving
// the row fields exactly as stored.
func DateLookupResult(row models.RosterRow) DateLookup {
	return DateLookup{
		Start: row.Start,
		End:   row.End,
		Names: Names{Primary: row.Primary, Secondary: row.Secondary},
	}
}

// PersonLookupResult builds the api-mode record for a person's upcoming
// assignments. Upcoming is always non-nil so the JSON renders [] not null.
func PersonLookupResult(name string, rows []models.RosterRow) PersonLookup {
	upcoming := make([]Slot, 0, len(rows))
	for _, row := range rows {
		upcoming = append(upcoming, Slot{
			Start:     row.Start,
			End:       row.End,
			Primary:   row.Primary,
			Secondary: row.Secondary,
		})
	}
	return PersonLookup{Name: name, Upcoming: upcoming}
}

// ChatDateMatch renders a matched row as Slack text: date range first, then
// primary, then secondary.
func ChatDateMatch(row models.RosterRow) string {
	return fmt.Sprintf(
		"📅 On-call from *%s* to *%s*\n👨‍🚒 Primary: *%s*\n🧯 Secondary: *%s*",
		row.Start, row.End, displayName(row.Primary), displayName(row.Secondary),
	)
}

// ChatUpcoming renders a person's upcoming slots as a bulleted Slack list.
func ChatUpcoming(name string, rows []models.RosterRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📟 On-call slots for *%s*:\n", displayName(name))
	for _, row := range rows {
		fmt.Fprintf(&b, "• %s → %s (👨‍🚒 Primary: %s, 🧯 Secondary: %s)\n",
			row.Start, row.End, displayName(row.Primary), displayName(row.Secondary))
	}
	return b.String()
}

// Not-found and caller-error messages, shared by both response modes.

// InvalidQueryMessage explains an unparsable date phrase.
func InvalidQueryMessage(query string) string {
	return fmt.Sprintf("Could not understand week_query: '%s'", query)
}

// DateNotFoundMessage is the no-match outcome for a date lookup.
func DateNotFoundMessage() string {
	return "No schedule found for that week."
}

// PersonNotFoundMessage is the empty-upcoming outcome for a person lookup.
func PersonNotFoundMessage(name string) string {
	return fmt.Sprintf("No upcoming on-call slots found for *%s*.", displayName(name))
}

// MissingNameMessage prompts chat users toward the slash-command usage.
func MissingNameMessage() string {
	return "No name provided. Try `/whenami Jane Doe`"
}

func displayName(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
