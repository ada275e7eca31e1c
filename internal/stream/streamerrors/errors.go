// Package streamerrors declares the sentinel error taxonomy shared across
// the ring store, admission pipeline, and query engine.
package streamerrors

import "errors"

var (
	// ErrInvalidArgument covers negative sizes, out-of-range indices, and
	// bad enum values. Always surfaced to the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFormatMismatch is returned when an admitted frame's shape or type
	// disagrees with the buffer's declared frame format.
	ErrFormatMismatch = errors.New("frame format mismatch")

	// ErrNullPayload is returned when a required payload pointer/slice is
	// missing.
	ErrNullPayload = errors.New("null payload")

	// ErrTimestampRegression is returned when admission would violate
	// filtered-timestamp monotonicity. Logged at DEBUG; callers typically
	// retry with a corrected timestamp.
	ErrTimestampRegression = errors.New("timestamp regression or duplicate")

	// ErrAllocationFailure is fatal for the operation that returns it.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrNotAvailableYet is returned when a queried UID is beyond the
	// latest admitted UID.
	ErrNotAvailableYet = errors.New("item not available yet")

	// ErrNotAvailableAnymore is returned when a queried UID has already
	// been overwritten by ring wrap-around.
	ErrNotAvailableAnymore = errors.New("item not available anymore")

	// ErrNoExactMatch is returned by Exact-mode queries when no slot's
	// filtered timestamp falls within NegligibleTimeDifference of the
	// requested time.
	ErrNoExactMatch = errors.New("no exact match at requested time")

	// ErrInterpolationFailed covers every reason interpolation cannot
	// proceed: closest item invalid, too far, missing neighbor, or invalid
	// neighbor.
	ErrInterpolationFailed = errors.New("interpolation failed")
)
