package port

import (
	"context"

	"github.com/google/uuid"

	"medchron/internal/domain"
)

// RunRepository persists chronology run records.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	Update(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Run, error)
	Ping(ctx context.Context) error
}
