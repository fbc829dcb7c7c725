package service

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested resource was not found. A resource that
// belongs to a different client is reported with this same error so that
// existence never leaks across tenants.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the resource exists within the caller's client but
// the caller lacks authorization for the attempted action.
var ErrForbidden = errors.New("forbidden")

// ValidationError represents a bad-request condition (HTTP 400).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ConflictError represents a conflict condition (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidStateError indicates a state-machine transition attempted from a
// state that does not allow it, e.g. accepting an already-active membership.
// Deliberately distinct from both ValidationError and authorization failures.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// PropagationError reports a partial failure while attaching a newly created
// permission to existing Administrators teams. The permission itself is kept;
// Failed lists the workspace IDs whose attachment failed.
type PropagationError struct {
	Failed []string
	Err    error
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("permission created but propagation failed for %d workspace(s): %v", len(e.Failed), e.Err)
}

func (e *PropagationError) Unwrap() error { return e.Err }
