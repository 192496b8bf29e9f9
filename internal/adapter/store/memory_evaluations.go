package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// MemoryEvaluationStore is an in-process port.EvaluationStore. Paired with
// MemoryVectorIndex for the memory backend; records do not survive restarts.
type MemoryEvaluationStore struct {
	mu      sync.RWMutex
	records map[string]domain.EvaluationRecord
}

// NewMemoryEvaluationStore creates an empty in-memory evaluation store.
func NewMemoryEvaluationStore() *MemoryEvaluationStore {
	return &MemoryEvaluationStore{
		records: make(map[string]domain.EvaluationRecord),
	}
}

// Save persists a record and returns its assigned identifier.
func (m *MemoryEvaluationStore) Save(ctx context.Context, rec *domain.EvaluationRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	stored := *rec
	stored.ID = id
	m.records[id] = stored
	return id, nil
}

// GetByID returns a record or port.ErrEvaluationNotFound.
func (m *MemoryEvaluationStore) GetByID(ctx context.Context, id string) (*domain.EvaluationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, port.ErrEvaluationNotFound
	}
	return &rec, nil
}

// ListRecent returns up to limit summaries, most recent first.
func (m *MemoryEvaluationStore) ListRecent(ctx context.Context, limit int) ([]domain.EvaluationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]domain.EvaluationSummary, 0, len(m.records))
	for _, rec := range m.records {
		summaries = append(summaries, domain.EvaluationSummary{
			ID:            rec.ID,
			Subject:       rec.Subject,
			QuestionID:    rec.QuestionID,
			StudentAnswer: rec.StudentAnswer,
			TotalAwarded:  rec.Breakdown.TotalAwarded,
			TotalPossible: rec.Breakdown.TotalPossible,
			CreatedAt:     rec.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// CountEvaluations returns the total number of stored records.
func (m *MemoryEvaluationStore) CountEvaluations(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records), nil
}
