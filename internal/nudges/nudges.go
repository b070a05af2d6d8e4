package nudges

import (
	"context"
	"log"
	"strings"

	"taskbrain-backend/internal/ai"
)

const (
	nudgeCount     = 3
	nudgeMaxTokens = 200
)

// Canned nudges served whenever the model path fails. Deterministic on
// purpose: nudges must never be the reason a request errors out.
var fallbackNudges = []string{
	"Keep going — take one focused step now.",
	"Small consistent progress compounds.",
	"Finish the highest-impact task first.",
}

// Generate returns three short motivational messages and the source they came
// from. topTasks is the planner's top-N summary; it only flavors the prompt.
func Generate(ctx context.Context, client *ai.Client, profile, tone string, topTasks []string) ([]string, string) {
	out, err := client.Generate(ctx, ai.BuildNudgePrompt(profile, tone, topTasks), nudgeMaxTokens)
	if err != nil {
		log.Printf("nudges fallback: %v", err)
		return Fallback(), ai.SourceFallback
	}

	lines := splitNudges(out)
	if len(lines) < nudgeCount {
		log.Printf("nudges fallback: model returned %d usable lines", len(lines))
		return Fallback(), ai.SourceFallback
	}
	return lines[:nudgeCount], ai.SourceModel
}

// Fallback returns a copy of the canned nudges.
func Fallback() []string {
	out := make([]string, len(fallbackNudges))
	copy(out, fallbackNudges)
	return out
}

// splitNudges strips list markers and blank lines from model output.
func splitNudges(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		l = strings.Trim(l, " -•0123456789.\t")
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
