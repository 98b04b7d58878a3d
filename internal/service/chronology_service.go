package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"medchron/internal/chronology"
	"medchron/internal/domain"
	"medchron/internal/guard"
	"medchron/internal/port"
	"medchron/internal/report"
	"medchron/internal/verifier"
)

// ProgressFunc receives pipeline progress events. It may be nil.
type ProgressFunc func(domain.ProgressEvent)

// GenerateInput describes one chronology run.
type GenerateInput struct {
	InputDir string `json:"input_dir"`
	// OutputDir overrides the configured output root. Artifacts are written
	// directly into it. Only the CLI sets it.
	OutputDir string `json:"-"`
	Label     string `json:"label"`
}

// GenerateResult is the outcome of a completed run.
type GenerateResult struct {
	Run       *domain.Run
	Narrative string
	Report    *verifier.Report
	Summary   *domain.RunSummary
	Paths     []string
}

// ChronologyConfig holds the pipeline knobs used by the service.
type ChronologyConfig struct {
	ChunkMaxChars        int
	BatchTokenBudget     int
	MaxOutputTokens      int
	InterBatchDelay      time.Duration
	AuditDocMaxChars     int
	AuditMaxOutputTokens int
	VerifyFailFast       bool
	Rules                string
	Model                string
	OutputRoot           string
	Bucket               string
	Prefix               string
	PresignExpiry        int64
	MaxConcurrentRuns    int
	RunTimeout           time.Duration
}

// ChronologyService runs the chronology pipeline and tracks run history.
type ChronologyService interface {
	Generate(ctx context.Context, input *GenerateInput, progress ProgressFunc) (*GenerateResult, error)
	StartRun(ctx context.Context, input *GenerateInput) (*domain.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	Wait()
}

type chronologyService struct {
	source   port.DocumentSource
	client   port.GenerationClient
	runRepo  port.RunRepository
	storage  port.ObjectStorage
	notifier port.Notifier
	cfg      ChronologyConfig

	sleep func(ctx context.Context, d time.Duration) error
	sem   chan struct{}
	wg    sync.WaitGroup
}

// NewChronologyService creates a ChronologyService. runRepo is required;
// storage and notifier may be nil.
func NewChronologyService(
	source port.DocumentSource,
	client port.GenerationClient,
	runRepo port.RunRepository,
	storage port.ObjectStorage,
	notifier port.Notifier,
	cfg ChronologyConfig,
) ChronologyService {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Hour
	}
	return &chronologyService{
		source:   source,
		client:   client,
		runRepo:  runRepo,
		storage:  storage,
		notifier: notifier,
		cfg:      cfg,
		sleep:    sleepContext,
		sem:      make(chan struct{}, cfg.MaxConcurrentRuns),
	}
}

// Generate runs the full pipeline synchronously. Any failure before the
// artifacts are written fails the whole run; no partial narrative is returned.
func (s *chronologyService) Generate(ctx context.Context, input *GenerateInput, progress ProgressFunc) (*GenerateResult, error) {
	run, err := s.createRun(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, run, input, progress)
}

// StartRun records a run and executes it in the background. The returned run
// is a snapshot taken before execution starts.
func (s *chronologyService) StartRun(ctx context.Context, input *GenerateInput) (*domain.Run, error) {
	run, err := s.createRun(ctx, input)
	if err != nil {
		return nil, err
	}
	snapshot := *run

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		bgCtx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		defer cancel()

		log.Printf("chronologyService.StartRun: starting run %s (%s)", run.ID, input.InputDir)
		if _, err := s.execute(bgCtx, run, input, nil); err != nil {
			log.Printf("chronologyService.StartRun: run %s failed: %v", run.ID, err)
		}
	}()

	return &snapshot, nil
}

func (s *chronologyService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	return s.runRepo.GetByID(ctx, id)
}

func (s *chronologyService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.runRepo.ListRecent(ctx, limit)
}

// Wait blocks until all background runs have finished.
func (s *chronologyService) Wait() {
	s.wg.Wait()
}

func (s *chronologyService) createRun(ctx context.Context, input *GenerateInput) (*domain.Run, error) {
	if input == nil || input.InputDir == "" {
		return nil, fmt.Errorf("input directory is required: %w", domain.ErrInvalidInput)
	}
	run := &domain.Run{
		ID:       uuid.New(),
		Label:    input.Label,
		Status:   domain.RunStatusRunning,
		InputDir: input.InputDir,
	}
	run.OutputDir = input.OutputDir
	if run.OutputDir == "" {
		run.OutputDir = filepath.Join(s.cfg.OutputRoot, run.ID.String())
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

func (s *chronologyService) execute(ctx context.Context, run *domain.Run, input *GenerateInput, progress ProgressFunc) (*GenerateResult, error) {
	emit := func(phase domain.Phase, current, total int, msg string) {
		if progress != nil {
			progress(domain.ProgressEvent{Phase: phase, Current: current, Total: total, Message: msg})
		}
	}
	startedAt := time.Now().UTC()

	emit(domain.PhaseReading, 0, 0, input.InputDir)
	docs, err := s.source.ReadDocuments(ctx, input.InputDir)
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("reading documents: %w", err))
	}
	if len(docs) == 0 {
		return nil, s.failRun(ctx, run, fmt.Errorf("reading documents: %w", domain.ErrNoDocuments))
	}
	run.DocumentCount = len(docs)

	items := chronology.ChunkAll(docs, s.cfg.ChunkMaxChars)
	emit(domain.PhaseChunking, len(items), len(items), fmt.Sprintf("%d documents, %d items", len(docs), len(items)))

	batches := chronology.MakeBatches(items, s.cfg.BatchTokenBudget)
	run.BatchCount = len(batches)
	emit(domain.PhaseBatching, len(batches), len(batches), "")
	log.Printf("chronologyService.execute: run %s has %d documents, %d items, %d batches",
		run.ID, len(docs), len(items), len(batches))

	processor := chronology.NewBatchProcessor(s.client, s.cfg.Rules, s.cfg.MaxOutputTokens)
	partials := make([]string, 0, len(batches))
	for i, batch := range batches {
		if i > 0 && s.cfg.InterBatchDelay > 0 {
			if err := s.sleep(ctx, s.cfg.InterBatchDelay); err != nil {
				return nil, s.failRun(ctx, run, fmt.Errorf("waiting between batches: %w", err))
			}
		}
		emit(domain.PhaseGenerating, i+1, len(batches), "")
		text, err := processor.Process(ctx, batch, len(batches))
		if err != nil {
			return nil, s.failRun(ctx, run, err)
		}
		partials = append(partials, text)
	}

	narrative := chronology.Merge(partials)
	emit(domain.PhaseMerging, len(partials), len(partials), "")

	violations := guard.Check(narrative)
	for _, v := range violations {
		log.Printf("chronologyService.execute: run %s formatting violation: %s", run.ID, v)
	}

	idx := chronology.BuildDateIndex(items)
	emit(domain.PhaseIndexing, len(idx), len(idx), "")

	v := verifier.NewVerifier(s.client, verifier.Config{
		DocMaxChars:     s.cfg.AuditDocMaxChars,
		MaxOutputTokens: s.cfg.AuditMaxOutputTokens,
		FailFast:        s.cfg.VerifyFailFast,
		OnProgress:      progress,
	})
	rep, err := v.Verify(ctx, narrative, idx)
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("verifying narrative: %w", err))
	}

	summary := &domain.RunSummary{
		RunID:                run.ID,
		Label:                run.Label,
		Model:                s.cfg.Model,
		DocumentCount:        len(docs),
		ChunkCount:           len(items),
		BatchCount:           len(batches),
		EntryCount:           rep.Entries,
		UndatedEntryCount:    rep.Undated,
		IndexedDateCount:     len(idx),
		FindingCount:         len(rep.Findings),
		FormattingViolations: violations,
		StartedAt:            startedAt,
		CompletedAt:          time.Now().UTC(),
	}

	emit(domain.PhaseWriting, 0, 0, run.OutputDir)
	artifacts, err := report.Render(&report.Bundle{
		Narrative:    narrative,
		Verification: rep.String(),
		Findings:     rep.Findings,
		Summary:      summary,
	})
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("rendering artifacts: %w", err))
	}
	paths, err := report.WriteDir(run.OutputDir, artifacts)
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("writing artifacts: %w", err))
	}

	run.ArtifactURL = s.publish(ctx, run, artifacts)
	run.EntryCount = rep.Entries
	run.FindingCount = len(rep.Findings)
	run.Status = domain.RunStatusCompleted
	s.finishRun(ctx, run)
	emit(domain.PhaseDone, 1, 1, run.OutputDir)

	log.Printf("chronologyService.execute: run %s completed with %d entries and %d findings",
		run.ID, rep.Entries, len(rep.Findings))

	return &GenerateResult{
		Run:       run,
		Narrative: narrative,
		Report:    rep,
		Summary:   summary,
		Paths:     paths,
	}, nil
}

// publish uploads artifacts to object storage and returns a presigned link to
// the narrative. Publishing failures are logged; the local artifacts remain.
func (s *chronologyService) publish(ctx context.Context, run *domain.Run, artifacts []report.Artifact) string {
	if s.storage == nil || s.cfg.Bucket == "" {
		return ""
	}
	metadata := map[string]string{"run-id": run.ID.String()}
	if run.Label != "" {
		metadata["label"] = run.Label
	}
	var chronologyKey string
	for _, a := range artifacts {
		key := path.Join(s.cfg.Prefix, run.ID.String(), a.Name)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(a.Data),
			ContentType: a.ContentType,
			Metadata:    metadata,
		})
		if err != nil {
			log.Printf("chronologyService.publish: failed to upload %s: %v", key, err)
			return ""
		}
		if a.Name == report.ChronologyFile {
			chronologyKey = key
		}
	}
	if chronologyKey == "" {
		return ""
	}
	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, chronologyKey, s.cfg.PresignExpiry)
	if err != nil {
		log.Printf("chronologyService.publish: failed to presign %s: %v", chronologyKey, err)
		return ""
	}
	return url
}

func (s *chronologyService) failRun(ctx context.Context, run *domain.Run, cause error) error {
	log.Printf("chronologyService.failRun: run %s failed: %v", run.ID, cause)
	run.Status = domain.RunStatusFailed
	run.Error = cause.Error()
	// Record the failure even when the run context is already cancelled.
	s.finishRun(context.WithoutCancel(ctx), run)
	return cause
}

func (s *chronologyService) finishRun(ctx context.Context, run *domain.Run) {
	if err := s.runRepo.Update(ctx, run); err != nil {
		log.Printf("chronologyService.finishRun: failed to update run %s: %v", run.ID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRunFinished(ctx, run); err != nil {
			log.Printf("chronologyService.finishRun: failed to notify for run %s: %v", run.ID, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
