// Package memory keeps run history in process memory when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"medchron/internal/domain"
	"medchron/internal/port"
)

type runRepo struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]domain.Run
}

// NewRunRepo creates an in-memory RunRepository.
func NewRunRepo() port.RunRepository {
	return &runRepo{runs: make(map[uuid.UUID]domain.Run)}
}

func (r *runRepo) Create(_ context.Context, run *domain.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *runRepo) Update(_ context.Context, run *domain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.runs[run.ID]
	if !ok {
		return domain.ErrRunNotFound
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = time.Now().UTC()
	r.runs[run.ID] = *run
	return nil
}

func (r *runRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return &run, nil
}

func (r *runRepo) ListRecent(_ context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	runs := make([]domain.Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *runRepo) Ping(_ context.Context) error {
	return nil
}
