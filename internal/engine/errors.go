package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying every failure mode of the wrapper. Callers
// dispatch on these with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrMissingCredential indicates the required API-key environment
	// variable is absent. Detected before any process is spawned.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrCapacity indicates the concurrent-evaluation limit was reached.
	ErrCapacity = errors.New("evaluation capacity reached")

	// ErrSpawn indicates the engine process could not be started.
	ErrSpawn = errors.New("failed to start evaluation process")

	// ErrProcess indicates the engine exited with a non-zero status that
	// is not the documented test-failures code.
	ErrProcess = errors.New("evaluation process failed")

	// ErrTimeout indicates the run exceeded its budget and was killed.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrParse indicates the results file was malformed or of an
	// unexpected shape.
	ErrParse = errors.New("failed to parse evaluation results")

	// ErrConfig indicates the engine's own configuration could not be
	// loaded for preview purposes.
	ErrConfig = errors.New("failed to load engine configuration")
)

// ValidationError carries field-level messages for a rejected run form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid run configuration"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "invalid run configuration: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AsValidation extracts a ValidationError from err, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
