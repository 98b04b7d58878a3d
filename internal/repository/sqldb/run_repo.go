package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"medchron/internal/domain"
	"medchron/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new sqlx-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

const runColumns = `id, label, status, input_dir, output_dir, document_count, batch_count,
	entry_count, finding_count, artifact_url, error, created_at, updated_at`

func (r *runRepo) Create(ctx context.Context, run *domain.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `INSERT INTO runs (` + runColumns + `)
		VALUES (:id, :label, :status, :input_dir, :output_dir, :document_count, :batch_count,
			:entry_count, :finding_count, :artifact_url, :error, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) Update(ctx context.Context, run *domain.Run) error {
	run.UpdatedAt = time.Now().UTC()

	query := `UPDATE runs SET
			label = :label, status = :status, output_dir = :output_dir,
			document_count = :document_count, batch_count = :batch_count,
			entry_count = :entry_count, finding_count = :finding_count,
			artifact_url = :artifact_url, error = :error, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("runRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("runRepo.Update rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	var run domain.Run
	query := r.db.Rebind(`SELECT ` + runColumns + ` FROM runs WHERE id = ?`)
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []domain.Run
	query := r.db.Rebind(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("runRepo.ListRecent: %w", err)
	}
	return runs, nil
}

func (r *runRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
