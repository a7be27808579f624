package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is already stored.
var ErrSessionExists = errors.New("session already exists")

// ErrInvalidTransition is returned when an operation does not match the
// session's current position (e.g. selecting a creative draft before a persona).
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidSelection is returned when a human selection cannot be interpreted.
var ErrInvalidSelection = errors.New("invalid selection")

// ErrInvalidBrief is returned when the start input is incomplete or malformed.
var ErrInvalidBrief = errors.New("invalid brief")

// ErrOutputAlreadySet is returned when an update would overwrite a step output.
var ErrOutputAlreadySet = errors.New("step output already set")

// StepError wraps a failure raised while executing a step.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
