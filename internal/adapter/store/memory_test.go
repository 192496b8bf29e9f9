package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

func vec(values ...float32) []float32 { return values }

func indexed(id, subject, questionID string, embedding []float32) domain.IndexedVector {
	return domain.IndexedVector{
		ID:        id,
		Embedding: embedding,
		Text:      "chunk " + id,
		Meta:      domain.ChunkMeta{Subject: subject, QuestionID: questionID, ChunkType: domain.ChunkTypeCriterion},
	}
}

func TestMemoryVectorIndex_SearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryVectorIndex()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedVector{
		indexed("exact", "Biology", "Q1", vec(1, 0, 0)),
		indexed("close", "Biology", "Q1", vec(1, 1, 0)),
		indexed("orthogonal", "Biology", "Q1", vec(0, 0, 1)),
	}))

	hits, err := idx.Search(ctx, vec(1, 0, 0), 10, nil)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "chunk exact", hits[0].Content)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "chunk close", hits[1].Content)
	assert.InDelta(t, 0.7071, hits[1].Similarity, 1e-4)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-9)
}

func TestMemoryVectorIndex_TopKLimit(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryVectorIndex()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedVector{
		indexed("a", "Biology", "Q1", vec(1, 0)),
		indexed("b", "Biology", "Q1", vec(1, 1)),
		indexed("c", "Biology", "Q1", vec(0, 1)),
	}))

	hits, err := idx.Search(ctx, vec(1, 0), 2, nil)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemoryVectorIndex_MetadataFilter(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryVectorIndex()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedVector{
		indexed("bio1", "Biology", "Q1", vec(1, 0)),
		indexed("bio2", "Biology", "Q2", vec(1, 0)),
		indexed("hist1", "History", "Q1", vec(1, 0)),
	}))

	hits, err := idx.Search(ctx, vec(1, 0), 10, map[string]string{
		"subject":     "Biology",
		"question_id": "Q1",
	})

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk bio1", hits[0].Content)
}

func TestMemoryVectorIndex_UpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryVectorIndex()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedVector{
		indexed("Biology_Q1_0", "Biology", "Q1", vec(1, 0)),
	}))
	updated := indexed("Biology_Q1_0", "Biology", "Q1", vec(0, 1))
	updated.Text = "rewritten chunk"
	require.NoError(t, idx.Upsert(ctx, []domain.IndexedVector{updated}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := idx.Search(ctx, vec(0, 1), 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "rewritten chunk", hits[0].Content)
}

func TestMemoryVectorIndex_ResetAndSubjects(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryVectorIndex()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedVector{
		indexed("bio1", "Biology", "Q2", vec(1, 0)),
		indexed("bio2", "Biology", "Q1", vec(1, 0)),
		indexed("hist1", "History", "Q1", vec(1, 0)),
	}))

	subjects, err := idx.Subjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"Biology": {"Q1", "Q2"},
		"History": {"Q1"},
	}, subjects)

	require.NoError(t, idx.Reset(ctx))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryEvaluationStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	evals := NewMemoryEvaluationStore()

	rec := &domain.EvaluationRecord{
		Subject:    "Biology",
		QuestionID: "Q1",
		Breakdown:  domain.ScoreBreakdown{TotalAwarded: 3, TotalPossible: 5},
		CreatedAt:  time.Now().UTC(),
	}

	id, err := evals.Save(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	saved, err := evals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Biology", saved.Subject)
	assert.Equal(t, 3, saved.Breakdown.TotalAwarded)
}

func TestMemoryEvaluationStore_GetMissing(t *testing.T) {
	evals := NewMemoryEvaluationStore()

	_, err := evals.GetByID(context.Background(), "no-such-id")

	assert.ErrorIs(t, err, port.ErrEvaluationNotFound)
}

func TestMemoryEvaluationStore_ListRecentOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	evals := NewMemoryEvaluationStore()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := evals.Save(ctx, &domain.EvaluationRecord{
			Subject:   "Biology",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	summaries, err := evals.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.True(t, summaries[0].CreatedAt.After(summaries[1].CreatedAt))

	n, err := evals.CountEvaluations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
