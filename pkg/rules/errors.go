package rules

import (
	"errors"
	"fmt"
)

// ErrEmptyPattern indicates a rule record without an input pattern.
var ErrEmptyPattern = errors.New("pattern is required")

// ParseError reports a rule file problem with its location.
type ParseError struct {
	// File is the rule file path, or a source name for in-memory data.
	File string

	// Line is the 1-based line of the offending record (0 if unknown).
	Line int

	// Message describes the problem.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
