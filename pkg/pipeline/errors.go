package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is reported by the manager stage when no source text
	// was provided.
	ErrEmptySource = errors.New("source text is empty")

	// ErrEmptyPrompt is reported by the manager stage when no user prompt
	// was provided.
	ErrEmptyPrompt = errors.New("user prompt is empty")

	// ErrReviewBudget is reported when the review/validation loop exceeds
	// the configured maximum number of cycles.
	ErrReviewBudget = errors.New("review budget exhausted")
)

// InputError marks malformed run input detected at the manager stage.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// GenerationError marks a failed or unusable external generation call.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RunError is the terminal error for a halted run. It carries the failing
// stage, the partial history, and the last known context for diagnostics.
type RunError struct {
	Stage   Stage
	History []Stage
	Context *Context
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run halted at %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
