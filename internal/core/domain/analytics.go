package domain

const (
	// DefaultDailyGoal is the display-only target of completed tasks per day.
	DefaultDailyGoal = 5

	MaxHeatmapLevel = 4
)

type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type AnalyticsReport struct {
	CurrentStreak int          `json:"current_streak"`
	LongestStreak int          `json:"longest_streak"`
	TotalTasks    int          `json:"total_tasks"`
	HeatmapData   []HeatmapDay `json:"heatmap_data"`
	DailyGoal     int          `json:"daily_goal"`
	TodayCount    int          `json:"today_count"`
}
