package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrValidation       = errors.New("validation failed")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrBackpressure     = errors.New("backpressure")
	ErrNotReady         = errors.New("model not ready")
	ErrTimeout          = errors.New("request timed out")
	ErrPrediction       = errors.New("prediction failed")
)

// Error is an API failure tagged with the operation that raised it and a
// sentinel kind. Cause, when set, is the detail shown to the client.
type Error struct {
	Op    string
	Kind  error
	Cause error
}

// NewKind builds an Error with no further detail.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind builds an Error around cause.
func WrapKind(op string, kind, cause error) error {
	return &Error{Op: op, Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
}

// Message is the client-facing text: the cause if any, else the kind.
func (e *Error) Message() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Cause.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
