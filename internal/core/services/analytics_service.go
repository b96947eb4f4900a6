package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/analytics"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/metrics"
)

type AnalyticsService struct {
	tasks domain.TaskRepository
	users domain.UserRepository
	opts  analytics.Options
	now   func() time.Time
}

func NewAnalyticsService(tasks domain.TaskRepository, users domain.UserRepository, loc *time.Location, dailyGoal int) *AnalyticsService {
	return &AnalyticsService{
		tasks: tasks,
		users: users,
		opts:  analytics.Options{Location: loc, DailyGoal: dailyGoal},
		now:   time.Now,
	}
}

// Activity builds the activity report of userID as of the service clock.
func (s *AnalyticsService) Activity(ctx context.Context, userID string) (*domain.AnalyticsReport, error) {
	return s.ActivityAt(ctx, userID, s.now())
}

// ActivityAt builds the report as of now.
func (s *AnalyticsService) ActivityAt(ctx context.Context, userID string, now time.Time) (*domain.AnalyticsReport, error) {
	start := time.Now()

	report, err := s.activity(ctx, userID, now)
	metrics.RecordAnalyticsReport(err == nil, time.Since(start))

	return report, err
}

func (s *AnalyticsService) activity(ctx context.Context, userID string, now time.Time) (*domain.AnalyticsReport, error) {
	if userID == "" {
		return nil, domain.ErrTaskInvalidUserID
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	// One extra day of slack covers zone offsets between the database
	// timestamps and the configured location; Aggregate trims the rest.
	since := analytics.WindowAt(now, s.opts.Location).StartTime(s.opts.Location).AddDate(0, 0, -1)

	tasks, err := s.tasks.ListCompletedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("analytics service: loading completed tasks: %w", err)
	}

	report := analytics.Compute(analytics.EventsFromTasks(tasks), now, s.opts)
	return &report, nil
}
