package port

import "context"

// GenerateInput carries a single prompt for the generation service.
type GenerateInput struct {
	Prompt          string
	MaxOutputTokens int
}

// GenerateOutput is the primary text payload returned by the generation service.
type GenerateOutput struct {
	Text       string
	ModelUsed  string
	StopReason string
}

// TextGenerator abstracts a single call to an LLM text-generation provider.
// Implementations classify failures as llm.GenerationError values so the
// retry engine can branch on the error kind.
type TextGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}

// GenerationClient issues one prompt to the generation service, retrying
// transient failures, and returns the trimmed primary text payload.
type GenerationClient interface {
	Call(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}
