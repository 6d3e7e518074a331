package format

import "errors"

var (
	// ErrUnsupportedInput indicates a container or element kind that cannot be handled.
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrType indicates a value of the wrong type, or unreadable metadata.
	ErrType = errors.New("type error")

	// ErrAllocation indicates an output container could not be built.
	ErrAllocation = errors.New("allocation error")
)
