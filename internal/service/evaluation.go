package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// RetryPolicy is the orchestrator's explicit retry policy for the judge call.
// Only transport-level failures are retried; a parsed response is never
// re-judged.
type RetryPolicy struct {
	Retries int // extra attempts after the first
	Backoff time.Duration
}

// EvaluationService orchestrates one atomic evaluation:
// retrieve -> judge -> score -> feedback -> persist.
type EvaluationService struct {
	retrieval *RetrievalService
	judge     *JudgeService
	store     port.EvaluationStore
	retry     RetryPolicy
}

// NewEvaluationService creates the evaluation orchestrator.
func NewEvaluationService(retrieval *RetrievalService, judge *JudgeService, store port.EvaluationStore, retry RetryPolicy) *EvaluationService {
	return &EvaluationService{
		retrieval: retrieval,
		judge:     judge,
		store:     store,
		retry:     retry,
	}
}

// Evaluate runs the full pipeline for one student answer.
//
// Failure policy: zero retrieved criteria returns port.ErrNoCriteria without
// calling the judge or persisting anything. A judge that cannot produce
// usable output degrades to a low-confidence zero-score record, which is
// still persisted and flagged for manual review. A parseable judge response
// with zero judgments returns port.ErrNoJudgments. Transport failures abort
// the request with no partial persistence.
func (s *EvaluationService) Evaluate(ctx context.Context, subject, questionID, studentAnswer string) (*domain.EvaluationRecord, error) {
	slog.Info("evaluation started", "subject", subject, "question_id", questionID)

	criteria, err := s.retrieval.Retrieve(ctx, studentAnswer, map[string]string{
		"subject":     subject,
		"question_id": questionID,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve criteria: %w", err)
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w for %s %s", port.ErrNoCriteria, subject, questionID)
	}

	outcome := s.judgeWithRetry(ctx, studentAnswer, criteria)
	if !outcome.Degraded() && len(outcome.Judgments) == 0 {
		return nil, port.ErrNoJudgments
	}

	breakdown := Breakdown(outcome.Judgments)
	warnings := Validate(outcome.Judgments)
	for _, w := range warnings {
		slog.Warn("score validation", "warning", w)
	}

	strengths, weaknesses := StrengthsWeaknesses(outcome.Judgments)
	fb := ComposeFeedback(breakdown, strengths, weaknesses, outcome.Judgments, outcome.Confidence)

	rec := &domain.EvaluationRecord{
		Subject:       subject,
		QuestionID:    questionID,
		StudentAnswer: studentAnswer,
		Retrieved:     criteria,
		Judgments:     outcome.Judgments,
		Breakdown:     breakdown,
		Feedback:      fb.Summary,
		Strengths:     fb.Strengths,
		Weaknesses:    fb.Weaknesses,
		Suggestions:   fb.Suggestions,
		Confidence:    outcome.Confidence,
		Warnings:      warnings,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := s.store.Save(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("save evaluation: %w", err)
	}
	rec.ID = id

	slog.Info("evaluation complete",
		"id", id,
		"awarded", breakdown.TotalAwarded,
		"possible", breakdown.TotalPossible,
		"grade", breakdown.Grade,
		"confidence", outcome.Confidence,
	)
	return rec, nil
}

// judgeWithRetry applies the retry policy to transport failures. Once the
// attempts are exhausted the failure degrades to a low-confidence outcome
// rather than propagating, matching the parse-failure policy.
func (s *EvaluationService) judgeWithRetry(ctx context.Context, studentAnswer string, criteria []domain.RetrievedCriterion) domain.JudgmentOutcome {
	var lastErr error
	for attempt := 0; attempt <= s.retry.Retries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying judge call", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(s.retry.Backoff):
			case <-ctx.Done():
				return domain.DegradedOutcome(fmt.Sprintf("Evaluation error: %v", ctx.Err()))
			}
		}

		outcome, err := s.judge.Judge(ctx, studentAnswer, criteria)
		if err == nil {
			return outcome
		}
		lastErr = err
	}

	slog.Error("judge unavailable", "error", lastErr)
	return domain.DegradedOutcome(fmt.Sprintf("Evaluation error: %v", lastErr))
}
