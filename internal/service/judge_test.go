package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

const validJudgeJSON = `{
  "criteria_evaluations": [
    {
      "criterion": "Defines photosynthesis",
      "max_marks": 2,
      "awarded_marks": 2,
      "justification": "Definition stated clearly and accurately",
      "missing_points": []
    }
  ],
  "confidence": "high",
  "confidence_reason": "Criteria closely matched the answer"
}`

func sampleCriteria() []domain.RetrievedCriterion {
	return []domain.RetrievedCriterion{
		{
			Content:    "Defines photosynthesis as conversion of light energy",
			Meta:       domain.ChunkMeta{Subject: "Biology", QuestionID: "Q1"},
			Similarity: 0.91,
		},
	}
}

func TestJudge_EmptyCriteriaShortCircuits(t *testing.T) {
	ai := &mockAI{chatResponse: validJudgeJSON}
	judge := NewJudgeService(ai, time.Minute)

	outcome, err := judge.Judge(context.Background(), "some answer", nil)

	require.NoError(t, err)
	assert.True(t, outcome.Degraded())
	assert.Equal(t, domain.ConfidenceLow, outcome.Confidence)
	assert.Equal(t, "No relevant marking criteria could be retrieved", outcome.Reason)
	assert.Equal(t, 0, ai.chatCalls, "the provider must not be called without criteria")
}

func TestJudge_TransportFailureIsAnError(t *testing.T) {
	ai := &mockAI{failures: -1, chatErr: errors.New("connection refused")}
	judge := NewJudgeService(ai, time.Minute)

	_, err := judge.Judge(context.Background(), "some answer", sampleCriteria())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestJudge_UnparseableResponseDegrades(t *testing.T) {
	ai := &mockAI{chatResponse: "I cannot grade this answer."}
	judge := NewJudgeService(ai, time.Minute)

	outcome, err := judge.Judge(context.Background(), "some answer", sampleCriteria())

	require.NoError(t, err)
	assert.True(t, outcome.Degraded())
	assert.Empty(t, outcome.Judgments)
	assert.Equal(t, domain.ConfidenceLow, outcome.Confidence)
	assert.Contains(t, outcome.Reason, "Failed to parse judge response")
}

func TestJudge_ParsesWellFormedResponse(t *testing.T) {
	ai := &mockAI{chatResponse: validJudgeJSON}
	judge := NewJudgeService(ai, time.Minute)

	outcome, err := judge.Judge(context.Background(), "some answer", sampleCriteria())

	require.NoError(t, err)
	assert.False(t, outcome.Degraded())
	require.Len(t, outcome.Judgments, 1)
	assert.Equal(t, 2, outcome.Judgments[0].AwardedMarks)
	assert.Equal(t, domain.ConfidenceHigh, outcome.Confidence)
}

func TestParseJudgeResponse_StripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validJudgeJSON + "\n```"

	outcome := ParseJudgeResponse(fenced)

	assert.False(t, outcome.Degraded())
	require.Len(t, outcome.Judgments, 1)
	assert.Equal(t, "Defines photosynthesis", outcome.Judgments[0].Criterion)
}

func TestParseJudgeResponse_StripsBareFence(t *testing.T) {
	fenced := "```\n" + validJudgeJSON + "\n```"

	outcome := ParseJudgeResponse(fenced)

	assert.False(t, outcome.Degraded())
	assert.Len(t, outcome.Judgments, 1)
}

func TestParseJudgeResponse_UnknownConfidenceDefaultsToMedium(t *testing.T) {
	raw := `{"criteria_evaluations": [{"criterion": "c", "max_marks": 1, "awarded_marks": 1, "justification": "present in the answer"}], "confidence": "certain"}`

	outcome := ParseJudgeResponse(raw)

	assert.False(t, outcome.Degraded())
	assert.Equal(t, domain.ConfidenceMedium, outcome.Confidence)
}

func TestBuildJudgePrompt_ListsEveryCriterion(t *testing.T) {
	criteria := []domain.RetrievedCriterion{
		{Content: "first criterion text", Similarity: 0.9},
		{Content: "second criterion text", Similarity: 0.5},
	}

	prompt := buildJudgePrompt("the student answer", criteria)

	assert.Contains(t, prompt, "CRITERION 1 (Relevance: 0.90)")
	assert.Contains(t, prompt, "CRITERION 2 (Relevance: 0.50)")
	assert.Contains(t, prompt, "first criterion text")
	assert.Contains(t, prompt, "second criterion text")
	assert.Contains(t, prompt, "the student answer")
	assert.Contains(t, prompt, "strict JSON")
}
