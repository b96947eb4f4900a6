package analytics

import (
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// Heatmap is the gap-filled calendar series plus its summary figures.
type Heatmap struct {
	Days       []domain.HeatmapDay
	Total      int
	TodayCount int
}

// Level buckets a daily count into 0..4, saturating at 4.
func Level(count int) int {
	if count <= 0 {
		return 0
	}
	return min(domain.MaxHeatmapLevel, count)
}

// BuildHeatmap emits one entry per window day, oldest first, today last.
func BuildHeatmap(activity DailyActivity, now time.Time, loc *time.Location) Heatmap {
	window := WindowAt(now, loc)

	hm := Heatmap{Days: make([]domain.HeatmapDay, 0, WindowDays)}

	for i := 0; i < WindowDays; i++ {
		day := window.Start.AddDays(i)
		count := activity[day]

		hm.Days = append(hm.Days, domain.HeatmapDay{
			Date:  day.String(),
			Count: count,
			Level: Level(count),
		})
		hm.Total += count
	}

	hm.TodayCount = activity[window.End]
	return hm
}
