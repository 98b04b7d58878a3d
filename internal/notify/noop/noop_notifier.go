package noop

import (
	"context"
	"log"

	"medchron/internal/domain"
	"medchron/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a Notifier that only logs run outcomes.
func NewNoopNotifier() port.Notifier {
	return &noopNotifier{}
}

func (n *noopNotifier) NotifyRunFinished(_ context.Context, run *domain.Run) error {
	if run.Status == domain.RunStatusFailed {
		log.Printf("[NOOP NOTIFY] Run %s (%s) failed: %s", run.ID, run.Label, run.Error)
		return nil
	}
	log.Printf("[NOOP NOTIFY] Run %s (%s) %s: %d entries, %d findings, output %s",
		run.ID, run.Label, run.Status, run.EntryCount, run.FindingCount, run.OutputDir)
	return nil
}
