// Package custody contains the pure business logic for custody calendars:
// cycle materialization, override layering, label resolution and the
// guards and planners behind guardian actions.
// This is part of the Functional Core - no I/O, only pure functions.
package custody

import (
	"fmt"
	"time"
)

// DateLayout is the storage and display format for calendar days.
const DateLayout = "2006-01-02"

// Date is a calendar day in the guardian's local calendar. It carries no
// time-of-day and no zone, so day arithmetic never shifts across
// timezone or DST boundaries.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
// Callers convert to the guardian's location first; converting to UTC
// before taking the date moves day boundaries.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a normalized Date (e.g. Jan 32 becomes Feb 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return d.utc().Format(DateLayout)
}

// AddDays returns d shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

// DaysSince returns the whole number of calendar days from o to d.
// Negative when d is before o.
func (d Date) DaysSince(o Date) int {
	return int(d.utc().Sub(o.utc()).Hours() / 24)
}

// Weekday returns the day of week of d.
func (d Date) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.DaysSince(o) < 0
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.DaysSince(o) > 0
}

// Within reports whether d lies in the closed range [from, to].
func (d Date) Within(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

// At returns the instant at the given time of day on d in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, 0, 0, loc)
}

// SundayOnOrBefore returns the Sunday of d's week (d itself on Sundays).
func SundayOnOrBefore(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (seconds are accepted and ignored).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
}

// ClockOf returns the time of day of t in t's location.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
