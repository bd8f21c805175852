package boxstore

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/oncallrota/rota-api-go/pkg/models"
)

// RowSkip records a spreadsheet row that could not be coerced into a roster
// row, with its 1-based line number for the logs.
type RowSkip struct {
	Line   int
	Reason error
}

// cellLayouts covers the date formats spreadsheet cells arrive in: ISO
// dates typed by hand plus the display formats excelize produces for native
// date cells.
var cellLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"02/01/2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
}

// ParseRoster decodes an XLSX workbook into a roster. The first sheet must
// carry a header row with Start, End, Primary and Secondary columns (any
// case, extra columns ignored). Rows whose dates cannot be coerced are
// returned as skips, not errors: partial data beats total failure for a
// read-only lookup.
func ParseRoster(data []byte) (models.Roster, []RowSkip, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("roster sheet is empty")
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var roster models.Roster
	var skipped []RowSkip
	for i, rec := range rows[1:] {
		line := i + 2
		row, err := coerceRow(rec, cols)
		if err != nil {
			skipped = append(skipped, RowSkip{Line: line, Reason: err})
			continue
		}
		roster = append(roster, row)
	}
	return roster, skipped, nil
}

type columns struct {
	start, end, primary, secondary int
}

func headerColumns(header []string) (columns, error) {
	cols := columns{start: -1, end: -1, primary: -1, secondary: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "start":
			cols.start = i
		case "end":
			cols.end = i
		case "primary":
			cols.primary = i
		case "secondary":
			cols.secondary = i
		}
	}
	if cols.start < 0 || cols.end < 0 || cols.primary < 0 || cols.secondary < 0 {
		return cols, errors.New("roster header must contain Start, End, Primary and Secondary")
	}
	return cols, nil
}

func coerceRow(rec []string, cols columns) (models.RosterRow, error) {
	start, err := parseCellDate(cell(rec, cols.start))
	if err != nil {
		return models.RosterRow{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseCellDate(cell(rec, cols.end))
	if err != nil {
		return models.RosterRow{}, fmt.Errorf("end: %w", err)
	}
	if start.After(end.Time) {
		return models.RosterRow{}, fmt.Errorf("start %s is after end %s", start, end)
	}
	return models.RosterRow{
		Start:     start,
		End:       end,
		Primary:   strings.TrimSpace(cell(rec, cols.primary)),
		Secondary: strings.TrimSpace(cell(rec, cols.secondary)),
	}, nil
}

// cell reads a column from a possibly ragged record; excelize omits
// trailing empty cells.
func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// parseCellDate coerces a cell to a calendar date: known text layouts
// first, then Excel serial numbers.
func parseCellDate(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, errors.New("empty date cell")
	}
	for _, layout := range cellLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("unrecognized date value %q", s)
}
