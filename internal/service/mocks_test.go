package service

import (
	"context"
	"strings"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// letterVec embeds text as normalised letter frequencies. Deterministic for
// identical input, which is all the pipeline requires of an embedder.
func letterVec(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// mockAI implements port.AIProvider with deterministic embeddings and a
// scripted chat response.
type mockAI struct {
	chatResponse string
	chatErr      error
	chatCalls    int
	embedErr     error
	// failures makes the first N chat calls return chatErr before
	// chatResponse is served; -1 fails every call.
	failures int
}

func (m *mockAI) ModelName() string          { return "mock-chat" }
func (m *mockAI) EmbeddingModelName() string { return "mock-embed" }

func (m *mockAI) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return letterVec(text), nil
}

func (m *mockAI) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = letterVec(t)
	}
	return vectors, nil
}

func (m *mockAI) Chat(_ context.Context, _ string, _ string) (string, error) {
	m.chatCalls++
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return "", m.chatErr
	}
	return m.chatResponse, nil
}

// mockIndex implements port.VectorIndex returning canned hits.
type mockIndex struct {
	hits      []domain.RetrievedCriterion
	searchErr error
	upserted  []domain.IndexedVector
}

func (m *mockIndex) Upsert(_ context.Context, vectors []domain.IndexedVector) error {
	m.upserted = append(m.upserted, vectors...)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, topK int, _ map[string]string) ([]domain.RetrievedCriterion, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

func (m *mockIndex) Reset(_ context.Context) error { m.upserted = nil; return nil }

func (m *mockIndex) Count(_ context.Context) (int, error) { return len(m.upserted), nil }

func (m *mockIndex) Subjects(_ context.Context) (map[string][]string, error) {
	return map[string][]string{}, nil
}
