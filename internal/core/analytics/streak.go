package analytics

import (
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// CalculateStreaks scans the window once, newest day first.
//
// The current streak is the unbroken run of active days that starts today;
// it is zero when today has no completions. The longest streak is the
// longest run found anywhere in the window.
func CalculateStreaks(activity DailyActivity, now time.Time, loc *time.Location) domain.StreakResult {
	today := DayOf(now, loc)

	var result domain.StreakResult
	run := 0
	inCurrent := true

	for i := 0; i < WindowDays; i++ {
		if activity[today.AddDays(-i)] > 0 {
			run++
			if run > result.LongestStreak {
				result.LongestStreak = run
			}
			continue
		}

		if inCurrent {
			result.CurrentStreak = run
			inCurrent = false
		}
		run = 0
	}

	if inCurrent {
		result.CurrentStreak = run
	}

	return result
}
