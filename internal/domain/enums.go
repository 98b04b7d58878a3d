package domain

// DateLayout is the canonical narrative/source date format (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// IssueType classifies a verification finding.
type IssueType string

const (
	IssueHallucination  IssueType = "Hallucination"
	IssueDateError      IssueType = "DateError"
	IssueMisattribution IssueType = "Misattribution"
	IssueExaggeration   IssueType = "Exaggeration"
	IssueNoSource       IssueType = "NoSource"
	IssueAuditFailed    IssueType = "AuditFailed"
)

// AuditIssueTypes are the issue types the generation service may report.
var AuditIssueTypes = []IssueType{
	IssueHallucination,
	IssueDateError,
	IssueMisattribution,
	IssueExaggeration,
}

// FindingSeverity ranks a verification finding.
type FindingSeverity string

const (
	SeverityCritical FindingSeverity = "Critical"
	SeverityModerate FindingSeverity = "Moderate"
	SeverityMinor    FindingSeverity = "Minor"
)

// ErrorKind classifies a generation-service failure for the retry engine.
type ErrorKind string

const (
	ErrorKindOverload  ErrorKind = "overload"
	ErrorKindRateLimit ErrorKind = "rate_limit"
	ErrorKindOther     ErrorKind = "other"
)

// Retryable reports whether failures of this kind are worth another attempt.
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindOverload || k == ErrorKindRateLimit
}

// Phase names a stage of a chronology run.
type Phase string

const (
	PhaseReading    Phase = "reading"
	PhaseChunking   Phase = "chunking"
	PhaseBatching   Phase = "batching"
	PhaseGenerating Phase = "generating"
	PhaseMerging    Phase = "merging"
	PhaseIndexing   Phase = "indexing"
	PhaseVerifying  Phase = "verifying"
	PhaseWriting    Phase = "writing"
	PhaseDone       Phase = "done"
)

// RunStatus tracks the lifecycle of a persisted run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)
