package bot

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinel errors
var (
	// ErrNoMatch indicates a sentence's path matched no rule.
	ErrNoMatch = errors.New("no rule matched")

	// ErrInputRejected indicates a turn arrived while input was not accepted.
	ErrInputRejected = errors.New("input rejected")

	// ErrTimeout indicates the turn's time budget ran out.
	ErrTimeout = errors.New("request timed out")

	// ErrEmptySentence indicates a sentence normalized to no tokens.
	ErrEmptySentence = errors.New("sentence is empty after normalization")
)

// TemplateError indicates a matched rule's template could not be parsed or
// evaluated.
type TemplateError struct {
	// Rule identifies the matched rule.
	Rule string

	// Source is where the rule was defined.
	Source string

	Cause error
}

// Error returns the error message.
func (e *TemplateError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("template for %q (%s): %v", e.Rule, e.Source, e.Cause)
	}
	return fmt.Sprintf("template for %q: %v", e.Rule, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// LoadError indicates a rule record was rejected while loading.
type LoadError struct {
	// Index is the record's position in the loaded sequence.
	Index int

	// Source is where the rule was defined.
	Source string

	Cause error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("rule %d (%s): %v", e.Index, e.Source, e.Cause)
	}
	return fmt.Sprintf("rule %d: %v", e.Index, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// TimeoutError records where a turn ran out of budget.
type TimeoutError struct {
	Budget  time.Duration
	Elapsed time.Duration
}

// Error returns the error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %v (budget %v)", e.Elapsed, e.Budget)
}

// Is reports ErrTimeout as a match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
