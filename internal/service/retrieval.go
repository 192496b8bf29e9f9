package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// RetrievalService embeds a query and performs similarity-filtered search
// against the vector index.
type RetrievalService struct {
	ai        port.AIProvider
	index     port.VectorIndex
	topK      int
	threshold float64
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(ai port.AIProvider, index port.VectorIndex, topK int, threshold float64) *RetrievalService {
	return &RetrievalService{ai: ai, index: index, topK: topK, threshold: threshold}
}

// Retrieve embeds the query once and returns the criteria at or above the
// similarity threshold, ordered by descending similarity. An empty slice is a
// valid outcome, distinct from an error: it means nothing relevant is indexed
// for the filter, not that retrieval failed.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, filter map[string]string) ([]domain.RetrievedCriterion, error) {
	embedding, err := s.ai.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, s.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.RetrievedCriterion, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < s.threshold {
			continue
		}
		hit.Similarity = math.Round(hit.Similarity*10000) / 10000
		results = append(results, hit)
	}

	slog.Info("retrieved criteria",
		"candidates", len(hits),
		"kept", len(results),
		"threshold", s.threshold,
	)
	return results, nil
}
