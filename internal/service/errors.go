package service

import "errors"

// Sentinel errors mapped to HTTP statuses by the API layer
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	// ErrUpstream marks a failure of an external dependency (generator, weather)
	ErrUpstream = errors.New("upstream dependency failed")
)
