package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrInvalidIdentifier is returned for user ids outside [A-Za-z0-9]+.
	ErrInvalidIdentifier = fmt.Errorf("%w: identifier", ErrInvalidInput)

	// ErrCacheInconsistency means more than one artifact exists for a user
	// where exactly one was expected.
	ErrCacheInconsistency = errors.New("cache inconsistency")

	ErrRender = errors.New("render failed")

	// ErrUnavailable marks transient record store failures that may be retried.
	ErrUnavailable = errors.New("record store unavailable")
)
