package model

import "errors"

// Sentinel errors shared across services, checked with errors.Is.
var (
	// ErrNotFound signals an operation on a nonexistent student or record.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals missing or malformed roster fields.
	ErrValidation = errors.New("validation error")
	// ErrStoreUnavailable signals a persistence layer failure. Callers
	// may retry manually; nothing retries automatically.
	ErrStoreUnavailable = errors.New("store unavailable")
)
