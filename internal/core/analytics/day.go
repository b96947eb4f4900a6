// Package analytics derives activity statistics from a user's completed
// tasks: a daily completion calendar over a trailing window, current and
// longest streaks, and a heatmap series. Every function is a pure function
// of its inputs and the reference instant.
package analytics

import (
	"fmt"
	"time"
)

// WindowDays is the length of the trailing calendar window, today included.
const WindowDays = 365

const dateLayout = "2006-01-02"

// Day is a calendar date with no time-of-day or zone attached.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date t denotes in loc. A nil loc means time.Local.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(locationOrLocal(loc)).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC), time.UTC)
}

func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Weekday is used by renderers that lay the calendar out in week columns.
func (d Day) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Window is an inclusive range of calendar days.
type Window struct {
	Start Day
	End   Day
}

// WindowAt returns the WindowDays-long window ending on now's date in loc.
func WindowAt(now time.Time, loc *time.Location) Window {
	today := DayOf(now, loc)
	return Window{Start: today.AddDays(-(WindowDays - 1)), End: today}
}

func (w Window) Contains(d Day) bool {
	return !d.Before(w.Start) && !w.End.Before(d)
}

// StartTime is the first instant of the window in loc.
func (w Window) StartTime(loc *time.Location) time.Time {
	return time.Date(w.Start.Year, w.Start.Month, w.Start.Day, 0, 0, 0, 0, locationOrLocal(loc))
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
