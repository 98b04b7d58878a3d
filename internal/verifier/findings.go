package verifier

import (
	"log"
	"regexp"
	"strings"

	"medchron/internal/chronology"
	"medchron/internal/domain"
)

// NoIssuesResponse is the reply the audit prompt asks for when nothing is wrong.
const NoIssuesResponse = "NO ISSUES FOUND"

// IsNoIssues reports whether response is the explicit clean reply.
func IsNoIssues(response string) bool {
	return strings.Contains(strings.ToUpper(response), NoIssuesResponse)
}

var findingDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// ParseFindings extracts findings from an audit response. Lines that are not
// FINDING records are ignored. Findings with an unknown issue type are
// dropped; an unknown severity becomes Moderate; a missing or invalid date
// falls back to groupDate.
func ParseFindings(response, groupDate string) []domain.VerificationFinding {
	var findings []domain.VerificationFinding
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*• ")
		fields := strings.Split(line, "|")
		if len(fields) < 5 || !strings.EqualFold(strings.TrimSpace(fields[0]), "FINDING") {
			continue
		}

		issue, ok := parseIssueType(fields[2])
		if !ok {
			log.Printf("verifier.ParseFindings: dropping finding with unknown issue type %q", strings.TrimSpace(fields[2]))
			continue
		}

		findings = append(findings, domain.VerificationFinding{
			EntryDate:   parseFindingDate(fields[1], groupDate),
			IssueType:   issue,
			Severity:    parseSeverity(fields[3]),
			Description: strings.TrimSpace(strings.Join(fields[4:], "|")),
		})
	}
	return findings
}

func parseIssueType(raw string) (domain.IssueType, bool) {
	key := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	for _, t := range domain.AuditIssueTypes {
		if strings.EqualFold(key, string(t)) {
			return t, true
		}
	}
	return "", false
}

func parseSeverity(raw string) domain.FindingSeverity {
	raw = strings.TrimSpace(raw)
	for _, s := range []domain.FindingSeverity{domain.SeverityCritical, domain.SeverityModerate, domain.SeverityMinor} {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return domain.SeverityModerate
}

func parseFindingDate(raw, groupDate string) string {
	m := findingDate.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return groupDate
	}
	if key, ok := chronology.NormalizeDate(m[1], m[2], m[3]); ok {
		return key
	}
	return groupDate
}
