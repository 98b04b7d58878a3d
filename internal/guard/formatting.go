// Package guard checks a finished chronology for formatting the house style forbids.
package guard

import (
	"fmt"
	"regexp"
)

var (
	boldText = regexp.MustCompile(`\*\*[^*]+\*\*`)
	allCaps  = regexp.MustCompile(`\b[A-Z]{2,}(?:\s+[A-Z]{2,}){4,}\b`)

	listMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*\*\s+`),
		regexp.MustCompile(`(?m)^\s*-\s+`),
		regexp.MustCompile(`(?m)^\s*•\s+`),
		regexp.MustCompile(`(?m)^\d+\.\s+`),
	}

	narrativePhrases = []string{
		"the patient was seen for",
		"patient presented with a chief complaint",
		"the patient presented",
		"pre-procedure laboratory studies were performed",
	}
	narrativePatterns = compilePhrases(narrativePhrases)
)

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
	}
	return out
}

// Check returns a message per violated rule, or nil when content is clean.
// At most one list violation is reported.
func Check(content string) []string {
	var violations []string

	if boldText.MatchString(content) {
		violations = append(violations, "Bold text (**text**) is not allowed in medical chronologies")
	}

	for _, re := range listMarkers {
		if re.MatchString(content) {
			violations = append(violations, fmt.Sprintf("Bullet points or lists are not allowed (found pattern: %s)", re.String()))
			break
		}
	}

	if allCaps.MatchString(content) {
		violations = append(violations, "All-caps sections are not allowed")
	}

	for i, re := range narrativePatterns {
		if re.MatchString(content) {
			violations = append(violations, fmt.Sprintf(
				"Narrative phrasing not allowed: '%s'. Use direct, factual tone (e.g., 'Chief Complaint:' instead)",
				narrativePhrases[i]))
		}
	}

	return violations
}
