package warp

import (
	"errors"
	"fmt"
)

// Error kinds raised by the engine. Every engine error wraps exactly one of these.
var (
	ErrInputValidation  = errors.New("input validation error")
	ErrConfiguration    = errors.New("configuration error")
	ErrConsistency      = errors.New("consistency error")
	ErrDegenerateWindow = errors.New("degenerate window")
	ErrInvalidPath      = errors.New("invalid path")

	// ErrInvalidParameter is a configuration error raised by the smoothing filter.
	ErrInvalidParameter = fmt.Errorf("invalid parameter: %w", ErrConfiguration)
)

// Error carries an error kind, a message and an optional underlying cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindName returns a stable snake_case name for the kind of err, or "internal"
// when err does not come from the engine.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputValidation):
		return "input_validation"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, ErrDegenerateWindow):
		return "degenerate_window"
	case errors.Is(err, ErrInvalidPath):
		return "invalid_path"
	default:
		return "internal"
	}
}
