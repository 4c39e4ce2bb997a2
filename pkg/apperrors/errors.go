// Package apperrors defines the typed failures surfaced by the query engine.
// Callers distinguish them with errors.Is / errors.As; none are retried.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrUnknownTemplate indicates the requested template ID is not registered.
var ErrUnknownTemplate = errors.New("unknown template")

// ValidationError reports missing or mistyped request parameters.
// Reason names the offending parameters.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "parameter validation failed: " + e.Reason
}

// TemplateError reports malformed conditional syntax encountered while
// rendering a template.
type TemplateError struct {
	Reason string
}

func (e *TemplateError) Error() string {
	return "template error: " + e.Reason
}

// ExecutionError wraps an opaque failure from the execution layer. The
// underlying error is preserved for unwrapping but never interpreted.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
