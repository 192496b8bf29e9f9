package service

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// Placeholders returned instead of empty lists, so callers can tell "none
// found" from "not computed".
const (
	noStrengthsPlaceholder  = "N/A - No strong areas identified"
	noWeaknessesPlaceholder = "N/A - No major weaknesses identified"
)

// Feedback is the composed, human-readable evaluation output.
type Feedback struct {
	Summary     string
	Strengths   []string
	Weaknesses  []string
	Suggestions []string
}

// ComposeFeedback derives the feedback package from the breakdown, the
// classified strengths/weaknesses and the judge confidence. Purely
// deterministic over the scoring output.
func ComposeFeedback(
	breakdown domain.ScoreBreakdown,
	strengths, weaknesses []string,
	judgments []domain.CriterionJudgment,
	confidence domain.Confidence,
) Feedback {
	if len(strengths) == 0 {
		strengths = []string{noStrengthsPlaceholder}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{noWeaknessesPlaceholder}
	}

	return Feedback{
		Summary:     composeSummary(breakdown, confidence),
		Strengths:   strengths,
		Weaknesses:  weaknesses,
		Suggestions: composeSuggestions(judgments, breakdown),
	}
}

func composeSummary(b domain.ScoreBreakdown, confidence domain.Confidence) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Score: %d/%d (%.1f%%) - Grade: %s\n\n",
		b.TotalAwarded, b.TotalPossible, b.Percentage, b.Grade)

	switch {
	case b.Percentage >= 80:
		sb.WriteString("Excellent work! Your answer demonstrates strong understanding of the topic. ")
	case b.Percentage >= 70:
		sb.WriteString("Good answer with solid understanding. ")
	case b.Percentage >= 60:
		sb.WriteString("Satisfactory answer, but there's room for improvement. ")
	case b.Percentage >= 50:
		sb.WriteString("Adequate answer, but several key points were missed. ")
	default:
		sb.WriteString("Your answer needs significant improvement. ")
	}

	fmt.Fprintf(&sb, "\n\nCriteria met: %d fully, %d partially, %d not met.",
		b.FullyMet, b.PartiallyMet, b.Unmet)

	if confidence == domain.ConfidenceLow {
		sb.WriteString("\n\nNote: This evaluation has low confidence due to limited or irrelevant marking criteria retrieval. Manual review recommended.")
	}

	return sb.String()
}

// composeSuggestions accumulates suggestions from every applicable rule:
// missing points, weak criteria, and percentage-band advice. A fixed
// encouragement stands in when no rule fires.
func composeSuggestions(judgments []domain.CriterionJudgment, b domain.ScoreBreakdown) []string {
	var suggestions []string

	var missing []string
	for _, j := range judgments {
		missing = append(missing, j.MissingPoints...)
	}
	if len(missing) > 0 {
		listed := missing
		ellipsis := ""
		if len(listed) > 3 {
			listed = listed[:3]
			ellipsis = "..."
		}
		suggestions = append(suggestions,
			fmt.Sprintf("Address the following missing points: %s%s", strings.Join(listed, ", "), ellipsis))
	}

	weak := 0
	for _, j := range judgments {
		if float64(j.AwardedMarks) < 0.5*float64(j.MaxMarks) {
			suggestions = append(suggestions,
				fmt.Sprintf("Strengthen your response on: %s", j.Criterion))
			weak++
			if weak == 2 {
				break
			}
		}
	}

	switch {
	case b.Percentage < 60:
		suggestions = append(suggestions,
			"Review the core concepts and ensure your answer directly addresses the question",
			"Include more specific details and examples to support your points")
	case b.Percentage < 80:
		suggestions = append(suggestions,
			"Expand on your main points with more detail and explanation")
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Continue demonstrating thorough understanding in your answers")
	}
	return suggestions
}
