package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates the frame loop is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrUnknownEngine indicates an unsupported script engine name.
	ErrUnknownEngine = errors.New("unknown script engine")

	// ErrNoPlugins indicates that no plugin package was found.
	ErrNoPlugins = errors.New("no plugins found")
)

// StartError reports a failure while bringing up a component.
type StartError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *StartError) Unwrap() error {
	return e.Err
}
