package chronology

import (
	"fmt"
	"strings"

	"medchron/internal/domain"
)

// FormatDocuments renders documents with the framing used in every prompt.
func FormatDocuments(docs []domain.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = fmt.Sprintf("=== DOCUMENT: %s ===\n%s", d.Filename, d.Content)
	}
	return strings.Join(parts, "\n\n")
}

// BuildBatchPrompt assembles the generation prompt for one batch. Rules are
// embedded verbatim; total is the number of batches in the run.
func BuildBatchPrompt(rules string, batch domain.Batch, total int) string {
	var b strings.Builder

	b.WriteString("You are generating a medical chronology from OCR-extracted medical records.\n")
	if total > 1 {
		fmt.Fprintf(&b, "These records are batch %d of %d. Other batches are processed separately; cover only the documents below.\n", batch.Index+1, total)
	}

	b.WriteString("\nRULES AND FORMATTING:\n")
	b.WriteString(strings.TrimSpace(rules))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "EXTRACTED DOCUMENTS (%d files):\n", len(batch.Items))
	b.WriteString(FormatDocuments(batch.Items))
	b.WriteString("\n\n")

	b.WriteString(`YOUR TASK:
Write the chronology entries for the documents above following all of the rules.
Start every entry with the date of service in MM/DD/YYYY format.
Separate entries with exactly one blank line and order them oldest to newest.
Write plain prose. Do not use markdown, bold text, bullet points, numbered lists or headings.
Output only the entries, with no preamble or closing remarks.`)

	return b.String()
}
