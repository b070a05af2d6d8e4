package ai

import (
	"context"
	"log"
	"time"

	"taskbrain-backend/internal/planner"
	"taskbrain-backend/internal/tasks"
)

// Result sources reported to the client.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

const prioritizeMaxTokens = 512

// Prioritizer ranks a task list. Implementations must not mutate the input.
type Prioritizer interface {
	Rank(ctx context.Context, list []tasks.Task, today time.Time) ([]tasks.Task, string, error)
}

// ModelPrioritizer asks the hosted model for an ordering.
type ModelPrioritizer struct {
	Client    *Client
	WorkStyle string
	Tone      string
}

func (p *ModelPrioritizer) Rank(ctx context.Context, list []tasks.Task, today time.Time) ([]tasks.Task, string, error) {
	out, err := p.Client.Generate(ctx, BuildPrioritizePrompt(list, p.WorkStyle, p.Tone), prioritizeMaxTokens)
	if err != nil {
		return nil, SourceModel, err
	}
	ranked, err := ParseRankedReply(out, list)
	if err != nil {
		return nil, SourceModel, err
	}
	return ranked, SourceModel, nil
}

// EnginePrioritizer is the deterministic engine behind the same interface. It
// never fails on normalized input.
type EnginePrioritizer struct{}

func (EnginePrioritizer) Rank(_ context.Context, list []tasks.Task, today time.Time) ([]tasks.Task, string, error) {
	return planner.Rank(list, today), SourceFallback, nil
}

// FallbackPrioritizer tries the primary and substitutes the secondary on any
// error. Strategy selection, no shared state.
type FallbackPrioritizer struct {
	Primary   Prioritizer
	Secondary Prioritizer
}

func (p FallbackPrioritizer) Rank(ctx context.Context, list []tasks.Task, today time.Time) ([]tasks.Task, string, error) {
	ranked, source, err := p.Primary.Rank(ctx, list, today)
	if err == nil {
		return ranked, source, nil
	}
	log.Printf("prioritizer fallback: %v", err)
	return p.Secondary.Rank(ctx, list, today)
}
