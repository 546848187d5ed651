package models

import "errors"

// Failure kinds surfaced to callers. Handlers map these to stable HTTP
// status codes; nothing else is retried except document number allocation.
var (
	// ErrNotFound means no report exists with the given id.
	ErrNotFound = errors.New("report not found")

	// ErrInvalidTransition means the requested lifecycle event is not
	// permitted from the report's current status. The record is unmodified.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState means a delete or similar operation is forbidden by
	// the report's current status.
	ErrInvalidState = errors.New("operation not allowed in current status")

	// ErrDuplicateDocumentNumber means a manually supplied document number
	// collides with an existing one.
	ErrDuplicateDocumentNumber = errors.New("duplicate document number")

	// ErrAllocationConflict means the allocator exhausted its retry budget
	// against concurrent creations in the same period.
	ErrAllocationConflict = errors.New("document number allocation conflict")

	// ErrValidation means the input fields are malformed.
	ErrValidation = errors.New("invalid report data")
)
