package resolve

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion rejects a blank user question before any attempt starts.
// It is not retryable.
var ErrEmptyQuestion = errors.New("user question is empty")

// ErrEmptyResult marks a successful execution that returned zero rows. The
// workflow treats it as a retry trigger until attempts are exhausted.
var ErrEmptyResult = errors.New("query returned no rows")

type ViolationKind string

const (
	ViolationSecurity ViolationKind = "security"
	ViolationSchema   ViolationKind = "schema"
	ViolationSyntax   ViolationKind = "syntax"
)

// ValidationError is a static-validation rejection of generated SQL.
type ValidationError struct {
	Kind   ViolationKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sql validation failed (%s): %s", e.Kind, e.Detail)
}

// GenerationError wraps a failed or unusable SQL-synthesis call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate sql: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// FormattingError wraps a failed query-correction call.
type FormattingError struct {
	Err error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("format question: %v", e.Err)
}

func (e *FormattingError) Unwrap() error { return e.Err }

// ExecutionError wraps a database rejection or failure while running
// validated SQL. The underlying message is preserved for retry prompts and
// caller diagnostics.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute sql: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
