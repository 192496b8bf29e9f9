package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// Scoring is pure aggregation over judgment lists: no external calls, no side
// effects. Every function here is deterministic.

// Total sums awarded and possible marks across judgments.
func Total(judgments []domain.CriterionJudgment) (awarded, possible int) {
	for _, j := range judgments {
		awarded += j.AwardedMarks
		possible += j.MaxMarks
	}
	return awarded, possible
}

// Breakdown aggregates judgments into totals, percentage, grade and bucket
// counts. Zero possible marks yields percentage 0, not an error. The three
// buckets partition the judgment set: every judgment is fully met, partially
// met, or unmet.
func Breakdown(judgments []domain.CriterionJudgment) domain.ScoreBreakdown {
	awarded, possible := Total(judgments)

	percentage := 0.0
	if possible > 0 {
		percentage = float64(awarded) / float64(possible) * 100
	}
	percentage = math.Round(percentage*100) / 100

	b := domain.ScoreBreakdown{
		TotalAwarded:  awarded,
		TotalPossible: possible,
		Percentage:    percentage,
		Grade:         GradeFor(percentage),
		CriteriaCount: len(judgments),
	}
	for _, j := range judgments {
		switch {
		case j.AwardedMarks == j.MaxMarks:
			b.FullyMet++
		case j.AwardedMarks == 0:
			b.Unmet++
		default:
			b.PartiallyMet++
		}
	}
	return b
}

// GradeFor maps a percentage to a letter grade. Boundaries are inclusive at
// the lower bound of each band.
func GradeFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 85:
		return "A"
	case percentage >= 80:
		return "A-"
	case percentage >= 75:
		return "B+"
	case percentage >= 70:
		return "B"
	case percentage >= 65:
		return "B-"
	case percentage >= 60:
		return "C+"
	case percentage >= 55:
		return "C"
	case percentage >= 50:
		return "C-"
	case percentage >= 45:
		return "D"
	default:
		return "F"
	}
}

// Validate surfaces scoring inconsistencies as advisory warnings. It never
// mutates or rejects judgments.
func Validate(judgments []domain.CriterionJudgment) []string {
	var warnings []string
	for idx, j := range judgments {
		if j.AwardedMarks > j.MaxMarks {
			warnings = append(warnings, fmt.Sprintf(
				"Criterion %d: Awarded marks (%d) exceed maximum (%d)",
				idx+1, j.AwardedMarks, j.MaxMarks))
		}
		if j.AwardedMarks < 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Criterion %d: Negative marks awarded (%d)", idx+1, j.AwardedMarks))
		}
		if len(strings.TrimSpace(j.Justification)) < 10 {
			warnings = append(warnings, fmt.Sprintf(
				"Criterion %d: Insufficient justification provided", idx+1))
		}
	}
	return warnings
}

// StrengthsWeaknesses classifies judgments: award ratio >= 0.8 is a strength,
// < 0.5 a weakness, [0.5, 0.8) neither. Judgments with zero max marks have no
// meaningful ratio and land in neither bucket.
func StrengthsWeaknesses(judgments []domain.CriterionJudgment) (strengths, weaknesses []string) {
	for _, j := range judgments {
		if j.MaxMarks <= 0 {
			continue
		}
		ratio := float64(j.AwardedMarks) / float64(j.MaxMarks)
		entry := fmt.Sprintf("%s: %s", j.Criterion, j.Justification)
		switch {
		case ratio >= 0.8:
			strengths = append(strengths, entry)
		case ratio < 0.5:
			weaknesses = append(weaknesses, entry)
		}
	}
	return strengths, weaknesses
}
