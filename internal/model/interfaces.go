package model

import "context"

// Planner produces a raw candidate plan for a command. The returned object is
// decoded JSON straight from the provider; schema enforcement happens in the
// core pipeline, not here. A single attempt, no retry.
type Planner interface {
	PlanToolCalls(ctx context.Context, command string, summary ContextSummary) (map[string]any, error)
}

// Transcriber converts recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, relPath string, data []byte) (string, error)
}

// Synthesizer renders text as spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
