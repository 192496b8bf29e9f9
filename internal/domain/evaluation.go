package domain

import "time"

// ScoreBreakdown is the deterministic aggregation of judgments. Derived,
// never stored on its own.
type ScoreBreakdown struct {
	TotalAwarded  int     `json:"total_awarded"`
	TotalPossible int     `json:"total_possible"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
	CriteriaCount int     `json:"criteria_count"`
	FullyMet      int     `json:"fully_met_criteria"`
	PartiallyMet  int     `json:"partially_met_criteria"`
	Unmet         int     `json:"unmet_criteria"`
}

// EvaluationRecord is the terminal artifact of one evaluation. Immutable once
// produced; the store assigns its ID on save.
type EvaluationRecord struct {
	ID            string               `json:"id"             db:"id"`
	Subject       string               `json:"subject"        db:"subject"`
	QuestionID    string               `json:"question_id"    db:"question_id"`
	StudentAnswer string               `json:"student_answer" db:"student_answer"`
	Retrieved     []RetrievedCriterion `json:"retrieved_context"`
	Judgments     []CriterionJudgment  `json:"criteria_scores"`
	Breakdown     ScoreBreakdown       `json:"breakdown"`
	Feedback      string               `json:"feedback"`
	Strengths     []string             `json:"strengths"`
	Weaknesses    []string             `json:"weaknesses"`
	Suggestions   []string             `json:"improvement_suggestions"`
	Confidence    Confidence           `json:"confidence"`
	Warnings      []string             `json:"warnings,omitempty"`
	CreatedAt     time.Time            `json:"created_at"     db:"created_at"`
}

// EvaluationSummary is one row of the evaluation history listing.
type EvaluationSummary struct {
	ID            string    `json:"id"             db:"id"`
	Subject       string    `json:"subject"        db:"subject"`
	QuestionID    string    `json:"question_id"    db:"question_id"`
	StudentAnswer string    `json:"student_answer" db:"student_answer"`
	TotalAwarded  int       `json:"total_marks_awarded"  db:"total_awarded"`
	TotalPossible int       `json:"total_marks_possible" db:"total_possible"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}
