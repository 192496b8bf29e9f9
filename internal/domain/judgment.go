package domain

// Confidence is the judge's self-reported reliability tag.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CriterionJudgment is the judge's scoring decision for a single criterion.
// The scoring engine checks (but does not enforce) 0 <= awarded <= max;
// violations surface as validation warnings.
type CriterionJudgment struct {
	Criterion     string   `json:"criterion"`
	MaxMarks      int      `json:"max_marks"`
	AwardedMarks  int      `json:"awarded_marks"`
	Justification string   `json:"justification"`
	MissingPoints []string `json:"missing_points"`
}

// JudgmentOutcome is the tagged result of a judge call: either a parsed list
// of judgments with a confidence tag, or a degraded outcome carrying only the
// reason. A degraded outcome always has zero judgments and low confidence.
type JudgmentOutcome struct {
	Judgments  []CriterionJudgment `json:"criteria_evaluations"`
	Confidence Confidence          `json:"confidence"`
	Reason     string              `json:"confidence_reason"`
	degraded   bool
}

// Degraded reports whether the judge output was unusable (unparseable,
// unavailable, or nothing to judge).
func (o JudgmentOutcome) Degraded() bool {
	return o.degraded
}

// DegradedOutcome builds the low-confidence zero-judgment outcome used when
// the judge cannot produce a usable result.
func DegradedOutcome(reason string) JudgmentOutcome {
	return JudgmentOutcome{
		Confidence: ConfidenceLow,
		Reason:     reason,
		degraded:   true,
	}
}
