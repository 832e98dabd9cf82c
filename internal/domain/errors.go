package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced listing or review is absent
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when the (listing, author) pair already
	// has a review
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when a payload fails shape or bounds rules
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated is returned when no valid caller identity is present
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when a valid identity is disallowed by policy
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable is returned when a collaborator fails unexpectedly;
	// the detail is logged, never surfaced to the caller
	ErrUnavailable = errors.New("service unavailable")
)
