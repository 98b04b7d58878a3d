package port

import (
	"context"

	"medchron/internal/domain"
)

// Notifier announces the outcome of a chronology run.
type Notifier interface {
	NotifyRunFinished(ctx context.Context, run *domain.Run) error
}
