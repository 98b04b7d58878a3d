package verifier

import (
	"fmt"
	"strings"

	"medchron/internal/domain"
)

// CleanReport is the report text when no group produced a finding.
const CleanReport = "No issues found. Every dated entry is supported by the source documents."

// Report is the outcome of a verification pass.
type Report struct {
	Findings []domain.VerificationFinding
	Entries  int
	Undated  int
	Groups   int
	// Audited, Unsourced and Failed partition Groups.
	Audited   int
	Unsourced int
	Failed    int
	// Unparsed counts audited groups whose reply held neither a finding nor
	// the clean marker.
	Unparsed int
}

// Clean reports whether the pass produced no findings.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}

// CountBySeverity tallies findings per severity.
func (r *Report) CountBySeverity() map[domain.FindingSeverity]int {
	counts := make(map[domain.FindingSeverity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// String renders the report as the verification text artifact.
func (r *Report) String() string {
	if r.Clean() {
		return CleanReport + r.unparsedNote()
	}
	var b strings.Builder
	counts := r.CountBySeverity()
	fmt.Fprintf(&b, "VERIFICATION FINDINGS: %d (%d critical, %d moderate, %d minor)\n\n",
		len(r.Findings),
		counts[domain.SeverityCritical], counts[domain.SeverityModerate], counts[domain.SeverityMinor])
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", f.EntryDate, f.IssueType, f.Severity, f.Description)
	}
	return strings.TrimRight(b.String(), "\n") + r.unparsedNote()
}

func (r *Report) unparsedNote() string {
	if r.Unparsed == 0 {
		return ""
	}
	return fmt.Sprintf("\n\nNOTE: %d audit replies matched no expected format and were treated as clean.", r.Unparsed)
}
