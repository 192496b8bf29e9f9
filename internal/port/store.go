package port

import (
	"context"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// EvaluationStore persists finished evaluation records and serves them back
// by ID or recency-ordered listing.
type EvaluationStore interface {
	// Save persists a record and returns its assigned identifier.
	Save(ctx context.Context, rec *domain.EvaluationRecord) (string, error)

	// GetByID returns a record or ErrEvaluationNotFound.
	GetByID(ctx context.Context, id string) (*domain.EvaluationRecord, error)

	// ListRecent returns up to limit summaries, most recent first.
	ListRecent(ctx context.Context, limit int) ([]domain.EvaluationSummary, error)

	// CountEvaluations returns the total number of stored records.
	CountEvaluations(ctx context.Context) (int, error)
}
