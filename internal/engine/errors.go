package engine

import "errors"

var (
	// ErrConfiguration indicates invalid engine construction parameters or options.
	ErrConfiguration = errors.New("configuration error")

	// ErrFinished indicates input was supplied after the final chunk of a pass.
	ErrFinished = errors.New("input already finished")

	// ErrClosed indicates use of a closed engine.
	ErrClosed = errors.New("engine closed")
)
