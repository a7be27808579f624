package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a model reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in output")

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // JSON path of the field, "(root)" for the document itself
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
