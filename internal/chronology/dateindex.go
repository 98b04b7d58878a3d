package chronology

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"medchron/internal/domain"
)

var sourceDate = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// DateIndex maps a normalized MM/DD/YYYY date to the documents that mention it.
type DateIndex map[string][]domain.Document

// NormalizeDate converts month, day and year digits into MM/DD/YYYY. It
// reports false when they do not form a real calendar date.
func NormalizeDate(month, day, year string) (string, bool) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	key := fmt.Sprintf("%02d/%02d/%04d", m, d, y)
	if _, err := time.Parse(domain.DateLayout, key); err != nil {
		return "", false
	}
	return key, true
}

// ExtractDates returns the distinct normalized dates mentioned in text, in
// order of first appearance.
func ExtractDates(text string) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, m := range sourceDate.FindAllStringSubmatch(text, -1) {
		key, ok := NormalizeDate(m[1], m[2], m[3])
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, key)
	}
	return dates
}

// BuildDateIndex indexes every item under each distinct date its content mentions.
func BuildDateIndex(items []domain.Document) DateIndex {
	idx := make(DateIndex)
	for _, item := range items {
		for _, key := range ExtractDates(item.Content) {
			idx[key] = append(idx[key], item)
		}
	}
	return idx
}

// Lookup returns the documents indexed under date, or nil.
func (idx DateIndex) Lookup(date string) []domain.Document {
	return idx[date]
}

// Has reports whether any document mentions date.
func (idx DateIndex) Has(date string) bool {
	return len(idx[date]) > 0
}

// Dates returns the indexed dates in chronological order.
func (idx DateIndex) Dates() []string {
	dates := make([]string, 0, len(idx))
	for k := range idx {
		dates = append(dates, k)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dateBefore(dates[i], dates[j])
	})
	return dates
}

func dateBefore(a, b string) bool {
	ta, errA := time.Parse(domain.DateLayout, a)
	tb, errB := time.Parse(domain.DateLayout, b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}
