package verifier

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"medchron/internal/chronology"
	"medchron/internal/domain"
	"medchron/internal/port"
)

// Config holds the audit limits and failure policy.
type Config struct {
	DocMaxChars     int
	MaxOutputTokens int
	// FailFast aborts verification on the first failed audit call instead of
	// recording an AuditFailed finding for the group and moving on.
	FailFast   bool
	OnProgress func(domain.ProgressEvent)
}

// Verifier cross-checks narrative entries against the source documents that
// mention the same date.
type Verifier struct {
	client port.GenerationClient
	cfg    Config
}

// NewVerifier creates a Verifier using client for audit calls.
func NewVerifier(client port.GenerationClient, cfg Config) *Verifier {
	if cfg.DocMaxChars <= 0 {
		cfg.DocMaxChars = 15000
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 4096
	}
	return &Verifier{client: client, cfg: cfg}
}

type dateGroup struct {
	date    string
	when    time.Time
	entries []domain.NarrativeEntry
}

// Verify audits the narrative one date group at a time, oldest first. Groups
// whose date no source document mentions get one NoSource finding per entry
// without an audit call. Undated entries are counted but not audited.
func (v *Verifier) Verify(ctx context.Context, narrative string, idx chronology.DateIndex) (*Report, error) {
	entries := chronology.ParseEntries(narrative)
	groups, undated := groupByDate(entries)

	report := &Report{Entries: len(entries), Undated: undated, Groups: len(groups)}

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("verification cancelled: %w", err)
		}
		v.progress(i+1, len(groups), g.date)

		if !idx.Has(g.date) {
			for range g.entries {
				report.Findings = append(report.Findings, domain.VerificationFinding{
					EntryDate:   g.date,
					IssueType:   domain.IssueNoSource,
					Description: fmt.Sprintf("no source document mentions %s", g.date),
					Severity:    domain.SeverityCritical,
				})
			}
			report.Unsourced++
			continue
		}

		prompt := BuildAuditPrompt(g.date, g.entries, idx.Lookup(g.date), v.cfg.DocMaxChars)
		response, err := v.client.Call(ctx, prompt, v.cfg.MaxOutputTokens)
		if err != nil {
			if v.cfg.FailFast || ctx.Err() != nil {
				return nil, fmt.Errorf("auditing entries dated %s: %w", g.date, err)
			}
			log.Printf("verifier.Verify: audit of %s failed, continuing: %v", g.date, err)
			report.Findings = append(report.Findings, domain.VerificationFinding{
				EntryDate:   g.date,
				IssueType:   domain.IssueAuditFailed,
				Description: fmt.Sprintf("audit call failed: %v", err),
				Severity:    domain.SeverityModerate,
			})
			report.Failed++
			continue
		}

		report.Audited++
		findings := ParseFindings(response, g.date)
		if len(findings) == 0 && !IsNoIssues(response) {
			log.Printf("verifier.Verify: audit reply for %s has no findings and no clean marker: %.120q", g.date, response)
			report.Unparsed++
		}
		report.Findings = append(report.Findings, findings...)
	}

	return report, nil
}

func (v *Verifier) progress(current, total int, date string) {
	if v.cfg.OnProgress == nil {
		return
	}
	v.cfg.OnProgress(domain.ProgressEvent{
		Phase:   domain.PhaseVerifying,
		Current: current,
		Total:   total,
		Message: date,
	})
}

func groupByDate(entries []domain.NarrativeEntry) ([]dateGroup, int) {
	byDate := make(map[string]*dateGroup)
	var (
		groups  []*dateGroup
		undated int
	)
	for _, e := range entries {
		if !e.Dated() {
			undated++
			continue
		}
		key := e.DateKey()
		g, ok := byDate[key]
		if !ok {
			g = &dateGroup{date: key, when: *e.Date}
			byDate[key] = g
			groups = append(groups, g)
		}
		g.entries = append(g.entries, e)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].when.Before(groups[j].when)
	})

	out := make([]dateGroup, len(groups))
	for i, g := range groups {
		out[i] = *g
	}
	return out, undated
}
