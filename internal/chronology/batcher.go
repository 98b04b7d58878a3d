package chronology

import (
	"unicode/utf8"

	"medchron/internal/domain"
)

// EstimateTokens approximates the token cost of s as one token per four characters.
func EstimateTokens(s string) int {
	return utf8.RuneCountInString(s) / 4
}

// MakeBatches packs items into ordered batches using greedy first-fit: an item
// that would push a non-empty batch over budget closes it and opens the next
// one. An item larger than the budget forms a batch by itself.
func MakeBatches(items []domain.Document, budget int) []domain.Batch {
	var (
		batches []domain.Batch
		current []domain.Document
		tokens  int
	)
	closeBatch := func() {
		batches = append(batches, domain.Batch{
			Index:         len(batches),
			Items:         current,
			TokenEstimate: tokens,
		})
		current = nil
		tokens = 0
	}

	for _, item := range items {
		cost := EstimateTokens(item.Content)
		if len(current) > 0 && tokens+cost > budget {
			closeBatch()
		}
		current = append(current, item)
		tokens += cost
	}
	if len(current) > 0 {
		closeBatch()
	}
	return batches
}
