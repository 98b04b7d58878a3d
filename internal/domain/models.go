package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is one OCR-derived source text. Chunks share the same shape; their
// filename carries a "(part N)" suffix.
type Document struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Batch is an ordered group of documents or chunks submitted in a single
// generation request.
type Batch struct {
	Index         int        `json:"index"`
	Items         []Document `json:"items"`
	TokenEstimate int        `json:"token_estimate"`
}

// NarrativeEntry is one paragraph of generated narrative. Date is nil for
// entries that do not start with a parseable MM/DD/YYYY token.
type NarrativeEntry struct {
	Date *time.Time
	Text string
}

// Dated reports whether the entry carries a leading calendar date.
func (e NarrativeEntry) Dated() bool {
	return e.Date != nil
}

// DateKey returns the canonical MM/DD/YYYY form of the entry date, or "" when undated.
func (e NarrativeEntry) DateKey() string {
	if e.Date == nil {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// VerificationFinding is a single issue raised against a narrative entry.
type VerificationFinding struct {
	EntryDate   string          `json:"entry_date"`
	IssueType   IssueType       `json:"issue_type"`
	Description string          `json:"description"`
	Severity    FindingSeverity `json:"severity"`
}

// ProgressEvent describes pipeline progress for callers that display it.
type ProgressEvent struct {
	Phase   Phase  `json:"phase"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

// RunSummary is the structured bookkeeping artifact written next to the narrative.
type RunSummary struct {
	RunID                uuid.UUID `json:"run_id"`
	Label                string    `json:"label,omitempty"`
	Model                string    `json:"model,omitempty"`
	DocumentCount        int       `json:"document_count"`
	ChunkCount           int       `json:"chunk_count"`
	BatchCount           int       `json:"batch_count"`
	EntryCount           int       `json:"entry_count"`
	UndatedEntryCount    int       `json:"undated_entry_count"`
	IndexedDateCount     int       `json:"indexed_date_count"`
	FindingCount         int       `json:"finding_count"`
	FormattingViolations []string  `json:"formatting_violations,omitempty"`
	StartedAt            time.Time `json:"started_at"`
	CompletedAt          time.Time `json:"completed_at"`
}

// Run is a persisted record of one chronology generation.
type Run struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Label         string    `db:"label" json:"label"`
	Status        RunStatus `db:"status" json:"status"`
	InputDir      string    `db:"input_dir" json:"input_dir"`
	OutputDir     string    `db:"output_dir" json:"output_dir"`
	DocumentCount int       `db:"document_count" json:"document_count"`
	BatchCount    int       `db:"batch_count" json:"batch_count"`
	EntryCount    int       `db:"entry_count" json:"entry_count"`
	FindingCount  int       `db:"finding_count" json:"finding_count"`
	ArtifactURL   string    `db:"artifact_url" json:"artifact_url,omitempty"`
	Error         string    `db:"error" json:"error,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
