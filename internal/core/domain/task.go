package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound        = newError(KindNotFound, "task not found")
	ErrTaskTitleEmpty      = newError(KindValidation, "task title cannot be empty")
	ErrTaskTitleTooLong    = newError(KindValidation, "task title is too long (max 200 chars)")
	ErrTaskDescTooLong     = newError(KindValidation, "task description is too long (max 1000 chars)")
	ErrTaskCategoryEmpty   = newError(KindValidation, "task category is required")
	ErrTaskInvalidUserID   = newError(KindValidation, "invalid user id")
	ErrTaskInvalidPriority = newError(KindValidation, "invalid priority (must be Low, Medium or High)")
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"

	MaxTaskTitleLen = 200
	MaxTaskDescLen  = 1000
)

type Task struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Category    string     `json:"category" db:"category"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Completed   bool       `json:"completed" db:"completed"`
	Priority    string     `json:"priority" db:"priority"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
	DueDate     *time.Time
	Priority    *string
	Completed   *bool
}

func normalizePriority(p string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", ErrTaskInvalidPriority
	}
}

func validateTask(title, desc, category string) error {
	if title == "" {
		return ErrTaskTitleEmpty
	}
	if len(title) > MaxTaskTitleLen {
		return ErrTaskTitleTooLong
	}
	if len(desc) > MaxTaskDescLen {
		return ErrTaskDescTooLong
	}
	if category == "" {
		return ErrTaskCategoryEmpty
	}
	return nil
}

func NewTask(userID, title, description, category, priority string, dueDate *time.Time) (*Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrTaskInvalidUserID
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)

	if err := validateTask(title, description, category); err != nil {
		return nil, err
	}

	prio, err := normalizePriority(priority)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Category:    category,
		DueDate:     dueDate,
		Priority:    prio,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply validates and applies a patch. Flipping Completed stamps or clears
// CompletedAt using now.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	title, desc, category, prio := t.Title, t.Description, t.Category, t.Priority

	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		desc = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		category = strings.TrimSpace(*p.Category)
	}
	if p.Priority != nil {
		normalized, err := normalizePriority(*p.Priority)
		if err != nil {
			return err
		}
		prio = normalized
	}

	if err := validateTask(title, desc, category); err != nil {
		return err
	}

	t.Title = title
	t.Description = desc
	t.Category = category
	t.Priority = prio

	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}

	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		if t.Completed {
			stamp := now.UTC()
			t.CompletedAt = &stamp
		} else {
			t.CompletedAt = nil
		}
	}

	t.UpdatedAt = now.UTC()
	return nil
}

// ActivityTime is the instant the task counts towards activity analytics:
// the completion time when known, otherwise the creation time.
func (t *Task) ActivityTime() time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.CreatedAt
}

type TaskSummary struct {
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	PercentCompleted float64 `json:"percent_completed"`
}

func NewTaskSummary(total, completed int) TaskSummary {
	s := TaskSummary{Total: total, Completed: completed}
	if total > 0 {
		s.PercentCompleted = float64(completed) * 100 / float64(total)
	}
	return s
}
