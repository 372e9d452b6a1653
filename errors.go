package collagery

import "errors"

var (
	// ErrNotFound is returned when no record exists for a slug
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstream is returned when a storage call fails or stored data is malformed
	ErrUpstream = errors.New("upstream failure")
)
