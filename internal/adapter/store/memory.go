package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// MemoryVectorIndex is an in-process port.VectorIndex. It backs the tests and
// the VECTOR_BACKEND=memory configuration for running without Postgres.
//
// Cosine similarity here equals 1 - cosineDistance, so scores line up with
// the pgvector index.
type MemoryVectorIndex struct {
	mu      sync.RWMutex
	vectors map[string]domain.IndexedVector
}

// NewMemoryVectorIndex creates an empty in-memory vector index.
func NewMemoryVectorIndex() *MemoryVectorIndex {
	return &MemoryVectorIndex{
		vectors: make(map[string]domain.IndexedVector),
	}
}

// Upsert adds vectors, overwriting any existing vector with the same ID.
func (m *MemoryVectorIndex) Upsert(ctx context.Context, vectors []domain.IndexedVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range vectors {
		m.vectors[v.ID] = v
	}
	return nil
}

// Search returns up to topK nearest vectors matching the metadata filter,
// ordered by descending similarity.
func (m *MemoryVectorIndex) Search(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]domain.RetrievedCriterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		vec   domain.IndexedVector
		score float64
	}

	var candidates []scored
	for _, v := range m.vectors {
		if !metaMatches(v.Meta, filter) {
			continue
		}
		candidates = append(candidates, scored{vec: v, score: cosineSimilarity(embedding, v.Embedding)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]domain.RetrievedCriterion, len(candidates))
	for i, c := range candidates {
		results[i] = domain.RetrievedCriterion{
			Content:    c.vec.Text,
			Meta:       c.vec.Meta,
			Similarity: c.score,
		}
	}
	return results, nil
}

// Reset deletes every vector from the index.
func (m *MemoryVectorIndex) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors = make(map[string]domain.IndexedVector)
	return nil
}

// Count returns the number of indexed vectors.
func (m *MemoryVectorIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.vectors), nil
}

// Subjects maps each indexed subject to its sorted question IDs.
func (m *MemoryVectorIndex) Subjects(ctx context.Context) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]map[string]bool)
	for _, v := range m.vectors {
		if seen[v.Meta.Subject] == nil {
			seen[v.Meta.Subject] = make(map[string]bool)
		}
		seen[v.Meta.Subject][v.Meta.QuestionID] = true
	}

	subjects := make(map[string][]string, len(seen))
	for subject, questions := range seen {
		for q := range questions {
			subjects[subject] = append(subjects[subject], q)
		}
		sort.Strings(subjects[subject])
	}
	return subjects, nil
}

// metaMatches applies the exact-equality metadata filter.
func metaMatches(meta domain.ChunkMeta, filter map[string]string) bool {
	for key, want := range filter {
		switch key {
		case "subject":
			if meta.Subject != want {
				return false
			}
		case "question_id":
			if meta.QuestionID != want {
				return false
			}
		case "chunk_type":
			if string(meta.ChunkType) != want {
				return false
			}
		default:
			if meta.Extra[key] != want {
				return false
			}
		}
	}
	return true
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
