package cycles

import "errors"

var (
	ErrNotFound          = errors.New("evaluation cycle not found")
	ErrInvalidTransition = errors.New("evaluation cycle status transition not allowed")
	ErrCycleNotWritable  = errors.New("evaluation cycle does not accept writes")
	ErrInvalidCycle      = errors.New("invalid evaluation cycle")
)

// ValidationError carries the message shown to the user when a write is
// rejected by the cycle gate.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrCycleNotWritable
}
