package planner

import (
	"sort"
	"time"

	"taskbrain-backend/internal/tasks"
)

// Rank scores every task and returns a new slice ordered by composite priority
// descending. Ties go to the earlier due date, tasks without a due date sort
// after dated ones, and remaining ties keep input order (the sort is stable).
// The input slice and its tasks are never modified; re-running on the same
// input always reproduces the same ordering.
func Rank(list []tasks.Task, today time.Time) []tasks.Task {
	ranked := make([]tasks.Task, len(list))
	for i, t := range list {
		ranked[i] = Score(t, today)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankedBefore(ranked[i], ranked[j])
	})

	return ranked
}

// rankedBefore is the strict ordering over scored tasks: higher composite
// first, then earlier due date, with undated tasks after dated ones. Equal
// tasks return false on both sides so the stable sort keeps input order.
func rankedBefore(a, b tasks.Task) bool {
	if a.CompositePriority != b.CompositePriority {
		return a.CompositePriority > b.CompositePriority
	}
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return false
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}

// TopSummary returns "name (tag)" lines for the top n ranked tasks. This is
// the only view the nudge prompt builder gets; the planner never sees prompts.
func TopSummary(ranked []tasks.Task, n int) []string {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, 0, n)
	for _, t := range ranked[:n] {
		line := t.Name
		if t.Tag != "" {
			line += " (" + t.Tag + ")"
		}
		out = append(out, line)
	}
	return out
}
