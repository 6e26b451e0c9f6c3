package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates an unknown draft id
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// InvalidTransitionError indicates an approve/edit/escalate attempt on a
	// draft in a terminal status
	InvalidTransitionError struct {
		Message string
	}

	// InvalidFilterError indicates an unsupported list filter value
	InvalidFilterError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string          { return e.Message }
func (e *ValidationError) Error() string        { return e.Message }
func (e *InvalidTransitionError) Error() string { return e.Message }
func (e *InvalidFilterError) Error() string     { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int          { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int        { return http.StatusUnprocessableEntity }
func (e *InvalidTransitionError) StatusCode() int { return http.StatusConflict }
func (e *InvalidFilterError) StatusCode() int     { return http.StatusBadRequest }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidFilter     = errors.New("invalid filter")
)

func (e *NotFoundError) Is(target error) bool          { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool        { return target == ErrValidation }
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
func (e *InvalidFilterError) Is(target error) bool     { return target == ErrInvalidFilter }

// ChannelUnregisteredError indicates a dispatch against a channel that has no
// registered send adapter.
type ChannelUnregisteredError struct {
	Channel string
}

func (e *ChannelUnregisteredError) Error() string {
	return fmt.Sprintf("no adapter registered for channel %q", e.Channel)
}

// StatusCode implements the HTTPError interface. The draft itself is valid;
// the outbound leg is what failed.
func (e *ChannelUnregisteredError) StatusCode() int { return http.StatusBadGateway }

// DispatchError wraps any failure raised by a send adapter. The draft is left
// untouched when dispatch fails.
type DispatchError struct {
	Channel string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("adapter for channel %q failed: %v", e.Channel, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// StatusCode implements the HTTPError interface
func (e *DispatchError) StatusCode() int { return http.StatusBadGateway }
