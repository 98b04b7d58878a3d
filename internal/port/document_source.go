package port

import (
	"context"

	"medchron/internal/domain"
)

// DocumentSource yields the OCR-extracted documents for a run.
type DocumentSource interface {
	ReadDocuments(ctx context.Context, location string) ([]domain.Document, error)
}
