package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"taskbrain-backend/internal/tasks"
)

const coachSystemPrompt = "You are a professional, friendly, motivational productivity coach. Respond concisely."

// BuildPrioritizePrompt asks the model for a reordered scoring of the task
// list. The task block uses the same pipe format the user typed.
func BuildPrioritizePrompt(list []tasks.Task, workStyle, tone string) string {
	var b strings.Builder

	b.WriteString(coachSystemPrompt)
	b.WriteString("\n")

	if workStyle != "" {
		b.WriteString("Work style: ")
		b.WriteString(workStyle)
		b.WriteString("\n")
	}
	if tone != "" {
		b.WriteString("Tone: ")
		b.WriteString(tone)
		b.WriteString("\n")
	}

	b.WriteString("\nTasks (one per line: name | estimated_minutes | due_date | tag):\n")
	b.WriteString(tasks.FormatBatch(list))
	b.WriteString("\n\nReturn ONLY a JSON array of objects with keys: name, priority_score (0-100), reason.\n")
	b.WriteString("List every task exactly once, highest priority first.\n")

	return b.String()
}

// BuildPlanPrompt asks the model for a time-blocked schedule over the ranked
// tasks.
func BuildPlanPrompt(ranked []tasks.Task, date, dayStart, dayEnd string, focusMinutes int) string {
	var b strings.Builder

	b.WriteString("Create a realistic time-blocked schedule for the day.\n")
	b.WriteString("Date: ")
	b.WriteString(date)
	b.WriteString("\nWork hours: ")
	b.WriteString(dayStart)
	b.WriteString(" - ")
	b.WriteString(dayEnd)
	b.WriteString("\n")
	if focusMinutes > 0 {
		b.WriteString("Focus block: ")
		b.WriteString(strconv.Itoa(focusMinutes))
		b.WriteString(" minutes\n")
	}

	taskJSON, _ := json.Marshal(ranked)
	b.WriteString("Tasks JSON: ")
	b.Write(taskJSON)
	b.WriteString("\n\nReturn ONLY valid JSON: {\"date\": \"")
	b.WriteString(date)
	b.WriteString("\", \"schedule\": [{\"start\": \"HH:MM\", \"end\": \"HH:MM\", \"task\": \"...\", \"notes\": \"...\"}]}\n")

	return b.String()
}

// BuildNudgePrompt asks for short motivational nudges. The top-ranked task
// summary comes in via planner.TopSummary; the prompt builder never reaches
// into the engine itself.
func BuildNudgePrompt(profile, tone string, topTasks []string) string {
	var b strings.Builder

	b.WriteString("You are a short motivational coach.")
	if profile != "" {
		b.WriteString(" User profile: ")
		b.WriteString(profile)
		b.WriteString(".")
	}
	if tone != "" {
		b.WriteString(" Tone: ")
		b.WriteString(tone)
		b.WriteString(".")
	}
	if len(topTasks) > 0 {
		b.WriteString(" Today's top tasks: ")
		b.WriteString(strings.Join(topTasks, "; "))
		b.WriteString(".")
	}
	b.WriteString(" Provide 3 short nudges (1-2 sentences each).")

	return b.String()
}
