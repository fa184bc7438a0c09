package models

import "errors"

// Error taxonomy for the task store. The first three reflect a caller's
// request being wrong and are not retryable; ErrStoreUnavailable marks
// an infrastructure fault (database, open circuit breaker) that the
// caller may retry.
var (
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
