package model

import "errors"

// Domain errors. All are recoverable at the caller; controllers map them to
// HTTP statuses.
var (
	// ErrDuplicateApplication is returned when a consultant already has an
	// active application for the same opportunity.
	ErrDuplicateApplication = errors.New("duplicate application")

	// ErrInvalidTransition is returned on an attempt to move an application
	// out of a terminal state, or along an edge the actor is not allowed.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotFound is returned for unknown consultant, opportunity or
	// application ids.
	ErrNotFound = errors.New("not found")
)
