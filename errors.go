package stretcher

import (
	"github.com/tphakala/go-audio-stretcher/internal/engine"
	"github.com/tphakala/go-audio-stretcher/internal/format"
	"github.com/tphakala/go-audio-stretcher/internal/pipeline"
)

// Error kinds. Every error returned by Stretch is an *Error wrapping one
// of these, or a context error.
var (
	// ErrConfiguration indicates an invalid quality, ratio, sample rate,
	// channel count or pitch scale.
	ErrConfiguration = engine.ErrConfiguration

	// ErrUnsupportedInput indicates a container or element type that cannot
	// be stretched, such as a nil value or a multi-dimensional array.
	ErrUnsupportedInput = format.ErrUnsupportedInput

	// ErrType indicates a list element that is not a real number, or a byte
	// buffer whose length does not fit the element kind.
	ErrType = format.ErrType

	// ErrAllocation indicates the output container could not be built.
	ErrAllocation = format.ErrAllocation

	// ErrDrainTimeout indicates the engine stopped producing output while
	// Config.MaxWait was set.
	ErrDrainTimeout = pipeline.ErrDrainTimeout
)

// Error reports the step of a Stretch call that failed.
type Error struct {
	Op  string // "validate", "classify", "unpack", "stretch" or "pack"
	Err error
}

func (e *Error) Error() string {
	return "stretcher: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
