package services

import (
	"errors"
	"fmt"
)

// Expected, user-facing conditions. Handlers map these onto status codes;
// nothing here is an application fault.
var (
	// ErrHabitNotFound usually means the client's habit cache is stale and a
	// reload is in order.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrAlreadyCompleted is the benign idempotency outcome of a double-tap
	// or a retried completion. Not logged as an error.
	ErrAlreadyCompleted = errors.New("habit already completed for this date")
)

// ValidationError reports caller-supplied data that violates a constraint.
// Always raised before any I/O, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure of the persistence collaborator. Retry
// policy belongs to the caller; the services never retry internally.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
