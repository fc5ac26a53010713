// Package apperr defines the error kinds shared by the catalog, gateway and
// ingestion pipeline. The HTTP layer maps them to responses in one place.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers both a missing record and a record owned by someone
	// else. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")
)

// ValidationError is a user-facing rejection with a readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// InfrastructureError marks a store, queue or indexer failure. The caller may
// retry the same operation.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InfrastructureError{Op: op, Err: err}
}

// PipelineError is terminal for the document: it has been (or was attempted
// to be) recorded as FAILED.
type PipelineError struct {
	DocumentID uuid.UUID
	Stage      string
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("process document %s: %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// PartialDeleteError reports which deletion steps completed before one failed.
// Retrying the delete with the same document id is safe.
type PartialDeleteError struct {
	DocumentID     uuid.UUID
	ObjectReleased bool
	VectorsPurged  bool
	RecordRemoved  bool
	Err            error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("delete document %s (object released=%t, vectors purged=%t, record removed=%t): %v",
		e.DocumentID, e.ObjectReleased, e.VectorsPurged, e.RecordRemoved, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

func IsRetryable(err error) bool {
	var infra *InfrastructureError
	return errors.As(err, &infra)
}

func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
