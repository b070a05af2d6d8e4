package planner

import (
	"strings"
	"time"

	"taskbrain-backend/internal/tasks"
)

// Urgency tiers, keyed off days until due.
const (
	UrgencyNone    = 0 // no due date
	UrgencyFar     = 1 // due beyond a week
	UrgencyWeek    = 2 // due within a week
	UrgencySoon    = 3 // due today or tomorrow
	UrgencyOverdue = 4 // due date already passed
)

// Tier boundaries in days-until-due.
const (
	soonWithinDays = 1
	weekWithinDays = 7
)

// Importance levels derived from the free-text tag.
const (
	ImportanceLow    = 1
	ImportanceMedium = 2
	ImportanceHigh   = 3
)

// Composite weights. One urgency tier step (10) outweighs the whole importance
// spread (3..9), so urgency always dominates and importance only splits ties
// within a tier.
const (
	WeightUrgency    = 10
	WeightImportance = 3
)

var (
	highImportanceKeywords = []string{"urgent", "critical", "high", "asap", "important"}
	lowImportanceKeywords  = []string{"low", "minor", "someday", "later"}
)

// UrgencyScore maps a due date to its tier relative to today. Both dates are
// compared at day granularity; time-of-day never matters.
func UrgencyScore(due *time.Time, today time.Time) int {
	if due == nil {
		return UrgencyNone
	}
	days := daysUntil(*due, today)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= soonWithinDays:
		return UrgencySoon
	case days <= weekWithinDays:
		return UrgencyWeek
	default:
		return UrgencyFar
	}
}

// ImportanceScore matches tag substrings case-insensitively. Unknown or empty
// tags are medium.
func ImportanceScore(tag string) int {
	lower := strings.ToLower(tag)
	for _, kw := range highImportanceKeywords {
		if strings.Contains(lower, kw) {
			return ImportanceHigh
		}
	}
	for _, kw := range lowImportanceKeywords {
		if strings.Contains(lower, kw) {
			return ImportanceLow
		}
	}
	return ImportanceMedium
}

// CompositePriority is the single ordering key.
func CompositePriority(urgency, importance int) int {
	return urgency*WeightUrgency + importance*WeightImportance
}

// Score returns a copy of the task with the derived fields filled in.
func Score(t tasks.Task, today time.Time) tasks.Task {
	t.UrgencyScore = UrgencyScore(t.DueDate, today)
	t.ImportanceScore = ImportanceScore(t.Tag)
	t.CompositePriority = CompositePriority(t.UrgencyScore, t.ImportanceScore)
	return t
}

func daysUntil(due, today time.Time) int {
	d := dateOnly(due)
	n := dateOnly(today)
	return int(d.Sub(n).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
