package chronology

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"medchron/internal/domain"
)

var (
	entrySeparator = regexp.MustCompile(`\n[ \t\r]*\n`)
	leadingDate    = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})(?:\D|$)`)
)

// ParseEntries splits narrative text into entries on blank lines. Each entry
// is trimmed; empty entries are discarded. An entry whose trimmed text starts
// with a valid MM/DD/YYYY date carries that date.
func ParseEntries(text string) []domain.NarrativeEntry {
	parts := entrySeparator.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1)
	entries := make([]domain.NarrativeEntry, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		entries = append(entries, domain.NarrativeEntry{Date: parseLeadingDate(p), Text: p})
	}
	return entries
}

func parseLeadingDate(entry string) *time.Time {
	m := leadingDate.FindStringSubmatch(entry)
	if m == nil {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, m[1])
	if err != nil {
		return nil
	}
	return &t
}

// SortEntries orders dated entries oldest first with a stable sort and appends
// undated entries after them in their original order.
func SortEntries(entries []domain.NarrativeEntry) []domain.NarrativeEntry {
	dated := make([]domain.NarrativeEntry, 0, len(entries))
	var undated []domain.NarrativeEntry
	for _, e := range entries {
		if e.Dated() {
			dated = append(dated, e)
		} else {
			undated = append(undated, e)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.Before(*dated[j].Date)
	})
	return append(dated, undated...)
}

// JoinEntries renders entries back to narrative text separated by blank lines.
func JoinEntries(entries []domain.NarrativeEntry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, "\n\n")
}

// Merge concatenates per-batch narratives and re-sorts the combined entries chronologically.
func Merge(partials []string) string {
	return SortNarrative(strings.Join(partials, "\n\n"))
}

// SortNarrative re-orders the entries of a narrative oldest to newest,
// undated entries last.
func SortNarrative(text string) string {
	return JoinEntries(SortEntries(ParseEntries(text)))
}
