package main

import (
	"context"
	"fmt"
	"log"

	"medchron/internal/chronology"
	"medchron/internal/config"
	"medchron/internal/llm"
	"medchron/internal/notify/noop"
	"medchron/internal/notify/ses"
	"medchron/internal/port"
	"medchron/internal/repository/memory"
	"medchron/internal/repository/sqldb"
	"medchron/internal/service"
	"medchron/internal/source/filesystem"
	s3storage "medchron/internal/storage/s3"
)

type app struct {
	cfg     *config.Config
	runs    port.RunRepository
	svc     service.ChronologyService
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("medchron: close: %v", err)
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := configureLogging(cfg.Log); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	gen, err := llm.NewFromConfig(&cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation provider: %w", err)
	}
	client := llm.NewRetryingClient(gen, llm.RetryConfig{
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		BackoffBase: cfg.Pipeline.BackoffBase,
	})

	if cfg.DB.Enabled() {
		db, err := sqldb.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := sqldb.Migrate(db, cfg.DB.Driver); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.runs = sqldb.NewRunRepo(db)
	} else {
		log.Printf("medchron: no database configured, keeping run history in memory")
		a.runs = memory.NewRunRepo()
	}

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		store, err := s3storage.NewArtifactStore(ctx, &cfg.S3)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize S3 artifact store: %w", err)
		}
		storage = store
	}

	var notifier port.Notifier
	if cfg.Email.Provider == "ses" && cfg.Email.NotifyAddress != "" {
		notifier, err = ses.NewSESNotifier(ctx, cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.NotifyAddress)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	} else {
		notifier = noop.NewNoopNotifier()
	}

	model := cfg.Generation.Primary.Model
	if model == "" {
		model = cfg.Generation.Primary.Provider
	}

	a.svc = service.NewChronologyService(filesystem.NewReader(), client, a.runs, storage, notifier, service.ChronologyConfig{
		ChunkMaxChars:        cfg.Pipeline.ChunkMaxChars,
		BatchTokenBudget:     cfg.Pipeline.BatchTokenBudget,
		MaxOutputTokens:      cfg.Pipeline.MaxOutputTokens,
		InterBatchDelay:      cfg.Pipeline.InterBatchDelay,
		AuditDocMaxChars:     cfg.Pipeline.AuditDocMaxChars,
		AuditMaxOutputTokens: cfg.Pipeline.AuditMaxOutputTokens,
		VerifyFailFast:       cfg.Pipeline.VerifyFailFast,
		Rules:                chronology.LoadRules(cfg.Pipeline.RulesPath),
		Model:                model,
		OutputRoot:           cfg.Output.Dir,
		Bucket:               cfg.S3.Bucket,
		Prefix:               cfg.S3.Prefix,
		PresignExpiry:        cfg.S3.PresignExpiry,
	})
	return a, nil
}
