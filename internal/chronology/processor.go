package chronology

import (
	"context"
	"fmt"
	"log"

	"medchron/internal/domain"
	"medchron/internal/port"
)

// BatchProcessor turns one batch into its partial narrative. Batches share no
// context with each other.
type BatchProcessor struct {
	client          port.GenerationClient
	rules           string
	maxOutputTokens int
}

// NewBatchProcessor creates a BatchProcessor. Empty rules fall back to DefaultRules.
func NewBatchProcessor(client port.GenerationClient, rules string, maxOutputTokens int) *BatchProcessor {
	if rules == "" {
		rules = DefaultRules
	}
	return &BatchProcessor{
		client:          client,
		rules:           rules,
		maxOutputTokens: maxOutputTokens,
	}
}

// Process generates the narrative for batch. total is the number of batches in the run.
func (p *BatchProcessor) Process(ctx context.Context, batch domain.Batch, total int) (string, error) {
	prompt := BuildBatchPrompt(p.rules, batch, total)
	log.Printf("chronology.BatchProcessor.Process: batch %d/%d, %d items, ~%d tokens, prompt %d chars",
		batch.Index+1, total, len(batch.Items), batch.TokenEstimate, len(prompt))

	text, err := p.client.Call(ctx, prompt, p.maxOutputTokens)
	if err != nil {
		return "", fmt.Errorf("generating batch %d/%d: %w", batch.Index+1, total, err)
	}
	return text, nil
}
