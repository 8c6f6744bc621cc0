package capability

import (
	"errors"
	"fmt"
)

// Capability error classes. Match with errors.Is.
var (
	// ErrInvocation is matched by errors raised by a plugin's own callable.
	ErrInvocation = errors.New("capability invocation failed")

	// ErrMalformedReturn is matched when a callable returned a value that
	// cannot be converted into the expected shape.
	ErrMalformedReturn = errors.New("capability returned malformed value")

	// ErrEngineClosed is returned when calling into a released engine.
	ErrEngineClosed = errors.New("script engine is closed")
)

// Kind classifies a capability failure.
type Kind int

const (
	// KindInvocation - the callable raised an error.
	KindInvocation Kind = iota

	// KindMalformedReturn - the returned value had the wrong shape.
	KindMalformedReturn
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvocation:
		return "invocation"
	case KindMalformedReturn:
		return "malformed return"
	default:
		return "unknown"
	}
}

// Error is a per-call capability failure.
type Error struct {
	Capability string
	Kind       Kind
	Err        error
}

// Invocation wraps err as an invocation failure of the named capability.
func Invocation(name string, err error) *Error {
	return &Error{Capability: name, Kind: KindInvocation, Err: err}
}

// Malformed builds a malformed-return failure of the named capability.
func Malformed(name string, format string, args ...any) *Error {
	return &Error{Capability: name, Kind: KindMalformedReturn, Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Capability, e.Kind)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Capability, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error belongs to the target class.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvocation:
		return e.Kind == KindInvocation
	case ErrMalformedReturn:
		return e.Kind == KindMalformedReturn
	}
	return false
}
