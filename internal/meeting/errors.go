package meeting

import "errors"

var (
	// ErrNotFound is returned by read-only lookups for unknown or expired
	// meeting ids. Mutating operations never return it; they create.
	ErrNotFound = errors.New("meeting not found")

	// ErrInvalidInput is returned for empty ids or negative rates. The
	// rejected call mutates nothing.
	ErrInvalidInput = errors.New("invalid input")
)
