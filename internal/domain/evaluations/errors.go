package evaluations

import "errors"

var (
	ErrNotFound            = errors.New("evaluation not found")
	ErrEvaluationCompleted = errors.New("evaluation already submitted")
	ErrIncomplete          = errors.New("evaluation has unscored items")
	ErrInvalidRating       = errors.New("ratings must be between 1 and 4")
	ErrInvalidInput        = errors.New("invalid evaluation input")
	ErrForbidden           = errors.New("not allowed to evaluate this employee")
)
