package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskbrain-backend/internal/planner"
	"taskbrain-backend/internal/tasks"
)

// rankedReply is one element of the JSON array the prioritize prompt asks for.
type rankedReply struct {
	Name          string `json:"name"`
	PriorityScore int    `json:"priority_score"`
	Reason        string `json:"reason"`
}

// scheduleReply is the plan shape the plan prompt asks for.
type scheduleReply struct {
	Date     string `json:"date"`
	Schedule []struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Task  string `json:"task"`
		Notes string `json:"notes"`
	} `json:"schedule"`
}

// sliceJSON cuts the first opener..closer span out of generated text. Models
// wrap their JSON in prose often enough that strict unmarshalling alone loses
// too many replies.
func sliceJSON(out string, opener, closer byte) (string, error) {
	s := strings.IndexByte(out, opener)
	e := strings.LastIndexByte(out, closer)
	if s == -1 || e == -1 || e < s {
		return "", fmt.Errorf("no %c...%c found in model output", opener, closer)
	}
	return out[s : e+1], nil
}

// ParseRankedReply maps the model's ordering back onto the submitted tasks.
// The reply must mention every submitted task name exactly once; anything else
// is rejected so the caller falls back to the engine.
func ParseRankedReply(out string, submitted []tasks.Task) ([]tasks.Task, error) {
	raw, err := sliceJSON(out, '[', ']')
	if err != nil {
		return nil, err
	}

	var reply []rankedReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("unparsable ranking reply: %w", err)
	}
	if len(reply) != len(submitted) {
		return nil, fmt.Errorf("ranking reply has %d tasks, submitted %d", len(reply), len(submitted))
	}

	byName := make(map[string]tasks.Task, len(submitted))
	for _, t := range submitted {
		byName[t.Name] = t
	}

	ranked := make([]tasks.Task, 0, len(reply))
	seen := make(map[string]bool, len(reply))
	for _, r := range reply {
		t, ok := byName[r.Name]
		if !ok {
			return nil, fmt.Errorf("ranking reply names unknown task %q", r.Name)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("ranking reply repeats task %q", r.Name)
		}
		seen[r.Name] = true
		t.CompositePriority = r.PriorityScore
		ranked = append(ranked, t)
	}

	return ranked, nil
}

// ParsePlanReply converts the model's HH:MM schedule into a DailyPlan with
// start offsets relative to dayStart. Unknown task names, unparsable times, or
// blocks starting before the workday reject the whole reply.
func ParsePlanReply(out string, ranked []tasks.Task, dayStart string, budgetMinutes int, today time.Time) (planner.DailyPlan, error) {
	raw, err := sliceJSON(out, '{', '}')
	if err != nil {
		return planner.DailyPlan{}, err
	}

	var reply scheduleReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return planner.DailyPlan{}, fmt.Errorf("unparsable plan reply: %w", err)
	}

	startOfDay, err := parseClock(dayStart)
	if err != nil {
		return planner.DailyPlan{}, err
	}

	byName := make(map[string]tasks.Task, len(ranked))
	for _, t := range ranked {
		byName[t.Name] = t
	}

	plan := planner.DailyPlan{
		Date:          today.Format(tasks.DateLayout),
		BudgetMinutes: budgetMinutes,
		Entries:       []planner.PlanEntry{},
		Unscheduled:   []tasks.Task{},
	}
	if reply.Date != "" {
		plan.Date = reply.Date
	}

	scheduled := make(map[string]bool, len(reply.Schedule))
	for _, block := range reply.Schedule {
		t, ok := byName[block.Task]
		if !ok {
			return planner.DailyPlan{}, fmt.Errorf("plan reply names unknown task %q", block.Task)
		}
		start, err := parseClock(block.Start)
		if err != nil {
			return planner.DailyPlan{}, err
		}
		end, err := parseClock(block.End)
		if err != nil {
			return planner.DailyPlan{}, err
		}
		offset := start - startOfDay
		if offset < 0 || end <= start {
			return planner.DailyPlan{}, fmt.Errorf("plan reply block %q has invalid times %s-%s", block.Task, block.Start, block.End)
		}
		plan.Entries = append(plan.Entries, planner.PlanEntry{
			Task:               t,
			StartOffsetMinutes: offset,
			DurationMinutes:    end - start,
		})
		scheduled[block.Task] = true
	}

	for _, t := range ranked {
		if !scheduled[t.Name] {
			plan.Unscheduled = append(plan.Unscheduled, t)
		}
	}

	return plan, nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unparsable clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
