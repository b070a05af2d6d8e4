package planner

import (
	"time"

	"taskbrain-backend/internal/tasks"
)

// PlanEntry is one scheduled block. StartOffsetMinutes counts from the start
// of the working day.
type PlanEntry struct {
	Task               tasks.Task `json:"task"`
	StartOffsetMinutes int        `json:"start_offset_minutes"`
	DurationMinutes    int        `json:"duration_minutes"`
}

// DailyPlan is one day's schedule plus everything that did not fit the budget.
type DailyPlan struct {
	Date          string       `json:"date"`
	BudgetMinutes int          `json:"budget_minutes"`
	Entries       []PlanEntry  `json:"entries"`
	Unscheduled   []tasks.Task `json:"unscheduled"`
	BudgetWarning bool         `json:"budget_warning,omitempty"`
	Source        string       `json:"source,omitempty"`
}

// Plan packs a ranked list into one day greedily: walk in priority order, take
// every task that still fits the remaining budget, push the rest to
// Unscheduled. Tasks are never split, so a task longer than the whole budget
// is unscheduled immediately. A zero or negative budget schedules nothing and
// flags the plan.
func Plan(ranked []tasks.Task, budgetMinutes int, today time.Time) DailyPlan {
	plan := DailyPlan{
		Date:          dateOnly(today).Format(tasks.DateLayout),
		BudgetMinutes: budgetMinutes,
		Entries:       []PlanEntry{},
		Unscheduled:   []tasks.Task{},
	}

	if budgetMinutes <= 0 {
		plan.BudgetWarning = true
		plan.Unscheduled = append(plan.Unscheduled, ranked...)
		return plan
	}

	remaining := budgetMinutes
	offset := 0
	for _, t := range ranked {
		if t.DurationMinutes > remaining {
			plan.Unscheduled = append(plan.Unscheduled, t)
			continue
		}
		plan.Entries = append(plan.Entries, PlanEntry{
			Task:               t,
			StartOffsetMinutes: offset,
			DurationMinutes:    t.DurationMinutes,
		})
		offset += t.DurationMinutes
		remaining -= t.DurationMinutes
	}

	return plan
}
