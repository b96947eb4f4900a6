package analytics

import "time"

// CompletionEvent is the slice of a task the engine needs.
type CompletionEvent struct {
	TaskID    string
	Timestamp time.Time
	Completed bool
}

// DailyActivity maps a calendar date to the number of completions on it.
// Dates without completions are absent.
type DailyActivity map[Day]int

// Aggregate counts completed events per calendar day inside the window
// ending at now. Incomplete events and events dated outside the window are
// ignored; a nil or empty slice yields an empty map.
func Aggregate(events []CompletionEvent, now time.Time, loc *time.Location) DailyActivity {
	window := WindowAt(now, loc)
	activity := make(DailyActivity)

	for _, e := range events {
		if !e.Completed {
			continue
		}
		day := DayOf(e.Timestamp, loc)
		if !window.Contains(day) {
			continue
		}
		activity[day]++
	}

	return activity
}

// Total is the number of completions recorded in the map.
func (a DailyActivity) Total() int {
	total := 0
	for _, c := range a {
		total += c
	}
	return total
}
