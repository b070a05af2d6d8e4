package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Task is one user-submitted work item. Once it leaves the normalizer it is
// treated as immutable: ranking and planning produce new ordered views and
// never modify the tasks they were given.
type Task struct {
	ID              string     `json:"id" validate:"required,uuid4"`
	Name            string     `json:"name" validate:"required"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,gt=0"`
	DueDate         *time.Time `json:"due_date,omitempty"` // calendar date, no time-of-day
	Tag             string     `json:"tag,omitempty"`

	// Derived by the planner, never user-supplied.
	UrgencyScore      int `json:"urgency_score,omitempty"`
	ImportanceScore   int `json:"importance_score,omitempty"`
	CompositePriority int `json:"composite_priority,omitempty"`
}

var validate = validator.New()

// NewTask builds a task with a fresh ID and a date-only due date.
func NewTask(name string, durationMinutes int, due *time.Time, tag string) Task {
	if due != nil {
		d := due.Truncate(24 * time.Hour)
		due = &d
	}
	return Task{
		ID:              uuid.NewString(),
		Name:            name,
		DurationMinutes: durationMinutes,
		DueDate:         due,
		Tag:             tag,
	}
}

// Validate checks the struct tags. The normalizer already enforces the same
// rules field by field; this is the last gate before a task enters a session.
func (t Task) Validate() error {
	return validate.Struct(t)
}

// DueDateString renders the due date as ISO or "" when absent.
func (t Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// FormatLine is the inverse of ParseLine. Derived scores are not part of the
// line format.
func FormatLine(t Task) string {
	parts := []string{t.Name, fmt.Sprintf("%d", t.DurationMinutes)}
	if t.DueDate != nil || t.Tag != "" {
		parts = append(parts, t.DueDateString())
	}
	if t.Tag != "" {
		parts = append(parts, t.Tag)
	}
	return strings.Join(parts, " | ")
}

// FormatBatch renders tasks one per line, same format the normalizer accepts.
func FormatBatch(list []Task) string {
	lines := make([]string, 0, len(list))
	for _, t := range list {
		lines = append(lines, FormatLine(t))
	}
	return strings.Join(lines, "\n")
}
