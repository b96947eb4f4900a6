package analytics

import (
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

type Options struct {
	// Location decides which calendar date a timestamp falls on.
	// Nil means the server's local zone.
	Location *time.Location

	// DailyGoal is echoed in the report for display. Zero means DefaultDailyGoal.
	DailyGoal int
}

// Compute runs the whole pipeline: aggregate, then streaks and heatmap over
// the same daily counts.
func Compute(events []CompletionEvent, now time.Time, opts Options) domain.AnalyticsReport {
	loc := locationOrLocal(opts.Location)

	goal := opts.DailyGoal
	if goal <= 0 {
		goal = domain.DefaultDailyGoal
	}

	activity := Aggregate(events, now, loc)
	streaks := CalculateStreaks(activity, now, loc)
	heatmap := BuildHeatmap(activity, now, loc)

	return domain.AnalyticsReport{
		CurrentStreak: streaks.CurrentStreak,
		LongestStreak: streaks.LongestStreak,
		TotalTasks:    heatmap.Total,
		HeatmapData:   heatmap.Days,
		DailyGoal:     goal,
		TodayCount:    heatmap.TodayCount,
	}
}

// EventsFromTasks converts persisted tasks into completion events.
func EventsFromTasks(tasks []*domain.Task) []CompletionEvent {
	events := make([]CompletionEvent, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		events = append(events, CompletionEvent{
			TaskID:    t.ID,
			Timestamp: t.ActivityTime(),
			Completed: t.Completed,
		})
	}
	return events
}
