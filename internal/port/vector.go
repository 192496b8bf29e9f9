package port

import (
	"context"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// VectorIndex stores chunk embeddings and serves filtered nearest-neighbour
// search. Implementations must be safe for concurrent reads during writes.
//
// The distance metric is pinned to cosine: Search returns
// similarity = 1 - cosineDistance, so scores fall in [-1, 1] and the
// retrieval threshold operates on that scale.
type VectorIndex interface {
	// Upsert adds vectors, overwriting any existing vector with the same ID.
	Upsert(ctx context.Context, vectors []domain.IndexedVector) error

	// Search returns up to topK nearest vectors whose metadata exactly
	// matches every key/value in filter, ordered by descending similarity.
	Search(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]domain.RetrievedCriterion, error)

	// Reset deletes every vector. The index must accept fresh Upserts after.
	Reset(ctx context.Context) error

	// Count returns the number of indexed vectors.
	Count(ctx context.Context) (int, error)

	// Subjects maps each indexed subject to its sorted question IDs.
	Subjects(ctx context.Context) (map[string][]string, error)
}
