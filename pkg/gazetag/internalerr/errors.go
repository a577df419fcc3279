package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Errors raised by the matching core
var (
	// ErrInvalidState is returned when an index is used out of lifecycle
	// order: registering or finalizing after Finalize, scanning before it.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlignment marks a character-level occurrence that does not fall
	// on token boundaries. The span matcher drops these; it is never
	// returned to callers.
	ErrAlignment = errors.New("occurrence not aligned to token boundaries")

	// ErrPrecondition is returned when spans handed to the encoder overlap
	// or fall outside the token sequence.
	ErrPrecondition = errors.New("precondition violated")
)
