package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medchron/internal/domain"
	"medchron/internal/port"
	"medchron/internal/report"
	"medchron/internal/repository/memory"
	"medchron/internal/service"
	"medchron/mocks"
)

var (
	batchPrompt = mock.MatchedBy(func(p string) bool { return strings.Contains(p, "EXTRACTED DOCUMENTS") })
	auditPrompt = mock.MatchedBy(func(p string) bool { return strings.Contains(p, "CHRONOLOGY ENTRIES DATED") })
)

func sourceDocs() []domain.Document {
	return []domain.Document{
		{Filename: "er.txt", Content: "Emergency visit on 01/05/2020 for neck pain."},
		{Filename: "ortho.txt", Content: "Surgery performed 3/10/2021 by Dr. Lee."},
	}
}

const generatedNarrative = "03/10/2021 Dr. Lee performed cervical fusion.\n\n01/05/2020 Patient seen in the ER for neck pain."

type serviceFixture struct {
	source   *mocks.MockDocumentSource
	client   *mocks.MockGenerationClient
	repo     *mocks.MockRunRepository
	notifier *mocks.MockNotifier
	storage  *mocks.MockObjectStorage
}

func newFixture() *serviceFixture {
	return &serviceFixture{
		source:   new(mocks.MockDocumentSource),
		client:   new(mocks.MockGenerationClient),
		repo:     new(mocks.MockRunRepository),
		notifier: new(mocks.MockNotifier),
		storage:  new(mocks.MockObjectStorage),
	}
}

func testConfig() service.ChronologyConfig {
	return service.ChronologyConfig{
		ChunkMaxChars:    1000,
		BatchTokenBudget: 1000,
		MaxOutputTokens:  512,
		Model:            "test-model",
	}
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture()
	outDir := t.TempDir()

	f.source.On("ReadDocuments", mock.Anything, "/in").Return(sourceDocs(), nil)
	f.client.On("Call", mock.Anything, batchPrompt, 512).Return(generatedNarrative, nil).Once()
	f.client.On("Call", mock.Anything, auditPrompt, mock.Anything).Return("NO ISSUES FOUND", nil).Twice()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Run")).Return(nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Run) bool {
		return r.Status == domain.RunStatusCompleted
	})).Return(nil)
	f.notifier.On("NotifyRunFinished", mock.Anything, mock.AnythingOfType("*domain.Run")).Return(nil)

	svc := service.NewChronologyService(f.source, f.client, f.repo, nil, f.notifier, testConfig())

	var phases []domain.Phase
	result, err := svc.Generate(context.Background(),
		&service.GenerateInput{InputDir: "/in", OutputDir: outDir, Label: "Doe"},
		func(e domain.ProgressEvent) { phases = append(phases, e.Phase) })

	require.NoError(t, err)
	assert.Equal(t, "01/05/2020 Patient seen in the ER for neck pain.\n\n03/10/2021 Dr. Lee performed cervical fusion.", result.Narrative)
	assert.True(t, result.Report.Clean())
	assert.Equal(t, domain.RunStatusCompleted, result.Run.Status)
	assert.Equal(t, 2, result.Run.DocumentCount)
	assert.Equal(t, 1, result.Run.BatchCount)
	assert.Equal(t, 2, result.Run.EntryCount)
	assert.Equal(t, 2, result.Summary.IndexedDateCount)
	assert.Equal(t, "test-model", result.Summary.Model)

	data, err := os.ReadFile(filepath.Join(outDir, report.ChronologyFile))
	require.NoError(t, err)
	assert.Equal(t, result.Narrative+"\n", string(data))
	assert.Len(t, result.Paths, 5)

	assert.Equal(t, domain.PhaseReading, phases[0])
	assert.Contains(t, phases, domain.PhaseVerifying)
	assert.Equal(t, domain.PhaseDone, phases[len(phases)-1])

	f.client.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestGenerate_BatchFailureFailsRun(t *testing.T) {
	f := newFixture()
	outDir := filepath.Join(t.TempDir(), "out")

	f.source.On("ReadDocuments", mock.Anything, "/in").Return(sourceDocs(), nil)
	f.client.On("Call", mock.Anything, batchPrompt, mock.Anything).Return("", domain.ErrRetriesExhausted)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Run) bool {
		return r.Status == domain.RunStatusFailed && r.Error != ""
	})).Return(nil)
	f.notifier.On("NotifyRunFinished", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewChronologyService(f.source, f.client, f.repo, nil, f.notifier, testConfig())
	result, err := svc.Generate(context.Background(), &service.GenerateInput{InputDir: "/in", OutputDir: outDir}, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no artifacts are written for a failed run")
	f.client.AssertNotCalled(t, "Call", mock.Anything, auditPrompt, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestGenerate_NoDocuments(t *testing.T) {
	f := newFixture()
	f.source.On("ReadDocuments", mock.Anything, "/empty").Return(nil, domain.ErrNoDocuments)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewChronologyService(f.source, f.client, f.repo, nil, nil, testConfig())
	_, err := svc.Generate(context.Background(), &service.GenerateInput{InputDir: "/empty", OutputDir: t.TempDir()}, nil)

	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	f.client.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_RequiresInputDir(t *testing.T) {
	f := newFixture()
	svc := service.NewChronologyService(f.source, f.client, f.repo, nil, nil, testConfig())

	_, err := svc.Generate(context.Background(), &service.GenerateInput{}, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerate_PublishesArtifacts(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.Bucket = "artifacts"
	cfg.Prefix = "chronologies"
	cfg.PresignExpiry = 600

	f.source.On("ReadDocuments", mock.Anything, "/in").Return(sourceDocs(), nil)
	f.client.On("Call", mock.Anything, batchPrompt, mock.Anything).Return(generatedNarrative, nil)
	f.client.On("Call", mock.Anything, auditPrompt, mock.Anything).Return("NO ISSUES FOUND", nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "artifacts" && strings.HasPrefix(in.Key, "chronologies/") &&
			in.Metadata["run-id"] != "" && in.Metadata["label"] == "Doe"
	})).Return(&port.UploadOutput{}, nil).Times(5)
	f.storage.On("GetPresignedURL", mock.Anything, "artifacts",
		mock.MatchedBy(func(k string) bool { return strings.HasSuffix(k, "/"+report.ChronologyFile) }),
		int64(600)).Return("https://signed.example/chronology.txt", nil)

	svc := service.NewChronologyService(f.source, f.client, f.repo, f.storage, nil, cfg)
	result, err := svc.Generate(context.Background(), &service.GenerateInput{InputDir: "/in", OutputDir: t.TempDir(), Label: "Doe"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/chronology.txt", result.Run.ArtifactURL)
	f.storage.AssertExpectations(t)
}

func TestGenerate_UploadFailureKeepsLocalArtifacts(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.Bucket = "artifacts"

	f.source.On("ReadDocuments", mock.Anything, "/in").Return(sourceDocs(), nil)
	f.client.On("Call", mock.Anything, batchPrompt, mock.Anything).Return(generatedNarrative, nil)
	f.client.On("Call", mock.Anything, auditPrompt, mock.Anything).Return("NO ISSUES FOUND", nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	svc := service.NewChronologyService(f.source, f.client, f.repo, f.storage, nil, cfg)
	result, err := svc.Generate(context.Background(), &service.GenerateInput{InputDir: "/in", OutputDir: t.TempDir()}, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Run.ArtifactURL)
	assert.Equal(t, domain.RunStatusCompleted, result.Run.Status)
	f.storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartRun_CompletesInBackground(t *testing.T) {
	f := newFixture()
	repo := memory.NewRunRepo()
	cfg := testConfig()
	cfg.OutputRoot = t.TempDir()

	f.source.On("ReadDocuments", mock.Anything, "/in").Return(sourceDocs(), nil)
	f.client.On("Call", mock.Anything, batchPrompt, mock.Anything).Return(generatedNarrative, nil)
	f.client.On("Call", mock.Anything, auditPrompt, mock.Anything).Return("NO ISSUES FOUND", nil)

	svc := service.NewChronologyService(f.source, f.client, repo, nil, nil, cfg)
	run, err := svc.StartRun(context.Background(), &service.GenerateInput{InputDir: "/in", Label: "bg"})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
	assert.Equal(t, filepath.Join(cfg.OutputRoot, run.ID.String()), run.OutputDir)

	svc.Wait()

	got, err := svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)
	assert.Equal(t, 2, got.EntryCount)

	runs, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
