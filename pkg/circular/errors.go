package circular

import "errors"

var (
	// ErrInvalidTime indicates a clock time component outside its valid range.
	ErrInvalidTime = errors.New("circular: invalid clock time")

	// ErrInvalidParameter indicates a non-positive bandwidth, grid size, or
	// resample count.
	ErrInvalidParameter = errors.New("circular: invalid parameter")

	// ErrEmptySample indicates an operation that requires at least one
	// observation was given none.
	ErrEmptySample = errors.New("circular: empty sample")
)
