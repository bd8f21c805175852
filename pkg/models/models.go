package models

import (
	"fmt"
	"time"
)

// Date is a naive calendar date. The roster carries no timezone information,
// so values are pinned to midnight UTC and compared with day precision.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// AddMonths returns the date n months later (n may be negative).
func (d Date) AddMonths(n int) Date {
	return Date{d.Time.AddDate(0, n, 0)}
}

// OnOrBefore reports whether d <= o.
func (d Date) OnOrBefore(o Date) bool {
	return !d.Time.After(o.Time)
}

// OnOrAfter reports whether d >= o.
func (d Date) OnOrAfter(o Date) bool {
	return !d.Time.Before(o.Time)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// MarshalJSON renders the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a "2006-01-02" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", b)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is a closed inclusive interval of calendar dates, Start <= End.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether the range covers the given date.
func (r DateRange) Contains(d Date) bool {
	return r.Start.OnOrBefore(d) && r.End.OnOrAfter(d)
}

// SingleDay collapses one date into a one-day range.
func SingleDay(d Date) DateRange {
	return DateRange{Start: d, End: d}
}

// RosterRow is one on-call assignment period. Start and End form a closed
// inclusive interval. Rows from the source sheet are not guaranteed to be
// sorted or non-overlapping.
type RosterRow struct {
	Start     Date   `json:"start"`
	End       Date   `json:"end"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Covers reports whether the row's assignment period contains the date.
func (r RosterRow) Covers(d Date) bool {
	return r.Start.OnOrBefore(d) && r.End.OnOrAfter(d)
}

// Roster is the ordered list of on-call assignments from one fetch of the
// source sheet. It is never mutated after parsing; refreshes replace it
// wholesale.
type Roster []RosterRow
