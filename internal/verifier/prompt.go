package verifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"medchron/internal/chronology"
	"medchron/internal/domain"
)

const truncationMarker = "\n[... document truncated ...]"

// BuildAuditPrompt assembles the audit request for one date group. Each
// document's content is cut to at most docMaxChars characters.
func BuildAuditPrompt(date string, entries []domain.NarrativeEntry, docs []domain.Document, docMaxChars int) string {
	trimmed := make([]domain.Document, len(docs))
	for i, d := range docs {
		trimmed[i] = domain.Document{Filename: d.Filename, Content: truncate(d.Content, docMaxChars)}
	}

	var b strings.Builder
	b.WriteString("You are auditing a medical chronology against the OCR-extracted records it was written from.\n\n")

	fmt.Fprintf(&b, "CHRONOLOGY ENTRIES DATED %s:\n", date)
	b.WriteString(chronology.JoinEntries(entries))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "SOURCE DOCUMENTS MENTIONING %s (%d files):\n", date, len(trimmed))
	b.WriteString(chronology.FormatDocuments(trimmed))
	b.WriteString("\n\n")

	b.WriteString(`YOUR TASK:
Compare every entry above with the source documents and report each problem you find.
Hallucination: the entry states something the sources do not contain.
DateError: the event happened on a different date than the entry says.
Misattribution: the event is credited to the wrong provider, facility or person.
Exaggeration: the entry overstates a finding, diagnosis or severity.

Report each problem on its own line in exactly this form:
FINDING | MM/DD/YYYY | <Hallucination|DateError|Misattribution|Exaggeration> | <Critical|Moderate|Minor> | <short description>
If every entry is supported by the sources, reply with exactly:
`)
	b.WriteString(NoIssuesResponse)

	return b.String()
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + truncationMarker
		}
		n++
	}
	return s
}
