package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

const scriptedJudgeJSON = `{
  "criteria_evaluations": [
    {
      "criterion": "Defines photosynthesis",
      "max_marks": 2,
      "awarded_marks": 2,
      "justification": "Definition stated clearly and accurately",
      "missing_points": []
    },
    {
      "criterion": "Names the reactants",
      "max_marks": 3,
      "awarded_marks": 1,
      "justification": "Only water was mentioned as a reactant",
      "missing_points": ["carbon dioxide"]
    }
  ],
  "confidence": "high",
  "confidence_reason": "Criteria closely matched the answer"
}`

func newEvaluationService(ai *mockAI, index port.VectorIndex, evals port.EvaluationStore, retry RetryPolicy) *EvaluationService {
	retrieval := NewRetrievalService(ai, index, 5, 0.3)
	judge := NewJudgeService(ai, time.Minute)
	return NewEvaluationService(retrieval, judge, evals, retry)
}

func TestEvaluate_EndToEnd(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	scheme := "# Biology Q1 Marking Scheme\n**Total Marks: 5**\n\n" +
		"1. Defines photosynthesis as conversion of light energy (2 marks)\n" +
		"2. Names the reactants carbon dioxide and water (3 marks)"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "biology_q1.md"), []byte(scheme), 0o644))

	ai := &mockAI{chatResponse: scriptedJudgeJSON}
	index := store.NewMemoryVectorIndex()
	evals := store.NewMemoryEvaluationStore()

	ingest := NewIngestService(ai, index, newTestChunker(t), StrategyCriteria)
	_, err := ingest.IngestDir(ctx, dir, false)
	require.NoError(t, err)

	svc := newEvaluationService(ai, index, evals, RetryPolicy{})
	answer := "Photosynthesis is the process where plants convert light energy into chemical energy using water."

	rec, err := svc.Evaluate(ctx, "Biology", "Q1", answer)

	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 3, rec.Breakdown.TotalAwarded)
	assert.Equal(t, 5, rec.Breakdown.TotalPossible)
	assert.Equal(t, 60.0, rec.Breakdown.Percentage)
	assert.Equal(t, "C+", rec.Breakdown.Grade)
	assert.Equal(t, 1, rec.Breakdown.FullyMet)
	assert.Equal(t, 1, rec.Breakdown.PartiallyMet)
	assert.Equal(t, 0, rec.Breakdown.Unmet)

	require.Len(t, rec.Strengths, 1)
	assert.Contains(t, rec.Strengths[0], "Defines photosynthesis")
	require.Len(t, rec.Weaknesses, 1)
	assert.Contains(t, rec.Weaknesses[0], "Names the reactants")
	assert.Contains(t, rec.Suggestions[0], "carbon dioxide")
	assert.Equal(t, domain.ConfidenceHigh, rec.Confidence)
	assert.NotEmpty(t, rec.Retrieved)

	// persisted and retrievable
	saved, err := evals.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Breakdown.TotalAwarded, saved.Breakdown.TotalAwarded)

	n, err := evals.CountEvaluations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEvaluate_NoCriteriaRetrieved(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{chatResponse: scriptedJudgeJSON}
	evals := store.NewMemoryEvaluationStore()
	svc := newEvaluationService(ai, store.NewMemoryVectorIndex(), evals, RetryPolicy{})

	_, err := svc.Evaluate(ctx, "Biology", "Q9", "an answer to a question never ingested")

	require.ErrorIs(t, err, port.ErrNoCriteria)
	assert.Equal(t, 0, ai.chatCalls, "the judge must not run without criteria")

	n, err := evals.CountEvaluations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing may be persisted")
}

func TestEvaluate_DegradedJudgePersistsZeroScore(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{chatResponse: "sorry, I refuse to emit JSON"}
	index := &mockIndex{hits: []domain.RetrievedCriterion{
		{Content: "some criterion", Similarity: 0.9},
	}}
	evals := store.NewMemoryEvaluationStore()
	svc := newEvaluationService(ai, index, evals, RetryPolicy{})

	rec, err := svc.Evaluate(ctx, "Biology", "Q1", "an answer")

	require.NoError(t, err)
	assert.Equal(t, 0, rec.Breakdown.TotalAwarded)
	assert.Equal(t, 0, rec.Breakdown.TotalPossible)
	assert.Equal(t, "F", rec.Breakdown.Grade)
	assert.Equal(t, domain.ConfidenceLow, rec.Confidence)
	assert.Contains(t, rec.Feedback, "Manual review recommended")

	n, err := evals.CountEvaluations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "degraded evaluations are still recorded")
}

func TestEvaluate_ParsedButEmptyJudgments(t *testing.T) {
	ai := &mockAI{chatResponse: `{"criteria_evaluations": [], "confidence": "high"}`}
	index := &mockIndex{hits: []domain.RetrievedCriterion{
		{Content: "some criterion", Similarity: 0.9},
	}}
	svc := newEvaluationService(ai, index, store.NewMemoryEvaluationStore(), RetryPolicy{})

	_, err := svc.Evaluate(context.Background(), "Biology", "Q1", "an answer")

	require.ErrorIs(t, err, port.ErrNoJudgments)
}

func TestEvaluate_RetriesTransportFailure(t *testing.T) {
	ai := &mockAI{
		failures:     1,
		chatErr:      errors.New("connection reset"),
		chatResponse: scriptedJudgeJSON,
	}
	index := &mockIndex{hits: []domain.RetrievedCriterion{
		{Content: "some criterion", Similarity: 0.9},
	}}
	svc := newEvaluationService(ai, index, store.NewMemoryEvaluationStore(),
		RetryPolicy{Retries: 1, Backoff: time.Millisecond})

	rec, err := svc.Evaluate(context.Background(), "Biology", "Q1", "an answer")

	require.NoError(t, err)
	assert.Equal(t, 2, ai.chatCalls)
	assert.Equal(t, 3, rec.Breakdown.TotalAwarded)
	assert.Equal(t, domain.ConfidenceHigh, rec.Confidence)
}

func TestEvaluate_ExhaustedRetriesDegrade(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{failures: -1, chatErr: errors.New("connection reset")}
	index := &mockIndex{hits: []domain.RetrievedCriterion{
		{Content: "some criterion", Similarity: 0.9},
	}}
	evals := store.NewMemoryEvaluationStore()
	svc := newEvaluationService(ai, index, evals,
		RetryPolicy{Retries: 1, Backoff: time.Millisecond})

	rec, err := svc.Evaluate(ctx, "Biology", "Q1", "an answer")

	require.NoError(t, err)
	assert.Equal(t, 2, ai.chatCalls)
	assert.Equal(t, domain.ConfidenceLow, rec.Confidence)
	assert.Equal(t, 0, rec.Breakdown.TotalAwarded)

	n, err := evals.CountEvaluations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
