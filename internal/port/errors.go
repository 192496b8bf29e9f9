package port

import "errors"

// Sentinel errors used across ports.
var (
	// ErrNoCriteria means no marking criteria could be retrieved for the
	// requested subject/question. Actionable: re-ingest or check spelling.
	ErrNoCriteria = errors.New("no marking criteria found")

	// ErrNoJudgments means the judge produced a parseable response that
	// contained nothing scoreable.
	ErrNoJudgments = errors.New("evaluation produced no scoreable judgments")

	ErrEvaluationNotFound = errors.New("evaluation not found")
)
