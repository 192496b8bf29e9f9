package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

const judgeSystemPrompt = `You are an exam grader. Your task is to evaluate a student's answer STRICTLY based on the provided marking criteria.

IMPORTANT RULES:
1. ONLY use the criteria provided - DO NOT invent or assume additional criteria
2. Award marks ONLY for points explicitly mentioned in the criteria
3. If the retrieved criteria seem incomplete or irrelevant, indicate low confidence
4. Be objective and consistent`

// noCriteriaReason is the synthetic reason used when retrieval yields nothing
// to judge against.
const noCriteriaReason = "No relevant marking criteria could be retrieved"

// JudgeService asks the AI backend for per-criterion judgments of an answer
// and parses the response into a tagged outcome.
type JudgeService struct {
	ai      port.AIProvider
	timeout time.Duration
}

// NewJudgeService creates a judge service. The timeout bounds each chat call;
// the judge call dominates evaluation latency.
func NewJudgeService(ai port.AIProvider, timeout time.Duration) *JudgeService {
	return &JudgeService{ai: ai, timeout: timeout}
}

// Judge evaluates the answer against the retrieved criteria. An empty
// criteria list short-circuits to a degraded outcome without calling the
// provider. A non-nil error means the provider was unreachable or timed out;
// the caller decides whether to retry or degrade. Unparseable provider output
// is not an error: it degrades.
func (s *JudgeService) Judge(ctx context.Context, studentAnswer string, criteria []domain.RetrievedCriterion) (domain.JudgmentOutcome, error) {
	if len(criteria) == 0 {
		return domain.DegradedOutcome(noCriteriaReason), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.ai.Chat(ctx, judgeSystemPrompt, buildJudgePrompt(studentAnswer, criteria))
	if err != nil {
		return domain.JudgmentOutcome{}, fmt.Errorf("judge chat: %w", err)
	}

	outcome := ParseJudgeResponse(raw)
	if outcome.Degraded() {
		slog.Warn("judge response degraded", "reason", outcome.Reason)
	} else {
		slog.Info("judge response parsed",
			"judgments", len(outcome.Judgments),
			"confidence", outcome.Confidence,
		)
	}
	return outcome, nil
}

// buildJudgePrompt formats the retrieved criteria and the answer into the
// grading task, demanding strict JSON output.
func buildJudgePrompt(studentAnswer string, criteria []domain.RetrievedCriterion) string {
	var sb strings.Builder

	sb.WriteString("MARKING CRITERIA (Retrieved from marking scheme):\n")
	for idx, c := range criteria {
		fmt.Fprintf(&sb, "\nCRITERION %d (Relevance: %.2f):\n%s\n", idx+1, c.Similarity, c.Content)
	}

	sb.WriteString("\nSTUDENT ANSWER:\n")
	sb.WriteString(studentAnswer)

	sb.WriteString(`

TASK:
Evaluate the student answer against EACH criterion above. For each criterion, provide:
1. The criterion description
2. Maximum marks for this criterion (estimate from context, typically 1-3 marks per criterion)
3. Marks awarded (0 to max)
4. Clear justification
5. Missing points (if any)

OUTPUT FORMAT (strict JSON):
{
  "criteria_evaluations": [
    {
      "criterion": "description of what is being evaluated",
      "max_marks": <number>,
      "awarded_marks": <number>,
      "justification": "explanation of why marks were awarded or deducted",
      "missing_points": ["point 1", "point 2"]
    }
  ],
  "confidence": "high|medium|low",
  "confidence_reason": "explanation of confidence level"
}

Respond with ONLY valid JSON, no additional text.`)

	return sb.String()
}

// judgeWire is the expected shape of the provider's JSON response.
type judgeWire struct {
	CriteriaEvaluations []domain.CriterionJudgment `json:"criteria_evaluations"`
	Confidence          string                     `json:"confidence"`
	ConfidenceReason    string                     `json:"confidence_reason"`
}

// ParseJudgeResponse parses the raw LLM output, tolerating a fenced code
// block wrapper. Anything unparseable yields a degraded outcome naming the
// failure; evaluation does not abort on bad judge output.
func ParseJudgeResponse(raw string) domain.JudgmentOutcome {
	cleaned := stripCodeFence(strings.TrimSpace(raw))

	var wire judgeWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return domain.DegradedOutcome(fmt.Sprintf("Failed to parse judge response: %v", err))
	}

	confidence := domain.Confidence(wire.Confidence)
	switch confidence {
	case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
	default:
		confidence = domain.ConfidenceMedium
	}

	return domain.JudgmentOutcome{
		Judgments:  wire.CriteriaEvaluations,
		Confidence: confidence,
		Reason:     wire.ConfidenceReason,
	}
}

// stripCodeFence removes a surrounding markdown code fence, with or without a
// "json" language tag.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	body := parts[1]
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}
