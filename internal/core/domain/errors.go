package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInitializing indicates the answer service has not finished its
	// one-time corpus load. The condition is transient: the caller that
	// triggered initialization retries the load on its next call, other
	// callers observe this error without blocking.
	ErrInitializing = errors.New("service initializing")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
