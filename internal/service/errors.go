// Package service holds the resort's business rules: the room catalog, the
// booking workflow, the user directory and the admin gate in front of them.
// Handlers translate the error kinds below into HTTP status codes.
package service

import "errors"

var (
	// ErrValidation marks input the operation cannot accept.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing room or booking.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when no identity accompanies the call.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller lacks the admin role.
	ErrForbidden = errors.New("forbidden")
)
