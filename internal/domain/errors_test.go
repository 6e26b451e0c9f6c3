package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  HTTPError
		want int
	}{
		{"not found", &NotFoundError{Message: "m"}, http.StatusNotFound},
		{"validation", &ValidationError{Message: "m"}, http.StatusUnprocessableEntity},
		{"invalid transition", &InvalidTransitionError{Message: "m"}, http.StatusConflict},
		{"invalid filter", &InvalidFilterError{Message: "m"}, http.StatusBadRequest},
		{"channel unregistered", &ChannelUnregisteredError{Channel: "sms"}, http.StatusBadGateway},
		{"dispatch failure", &DispatchError{Channel: "email", Err: errors.New("x")}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&NotFoundError{Message: "m"}, ErrNotFound},
		{&ValidationError{Message: "m"}, ErrValidation},
		{&InvalidTransitionError{Message: "m"}, ErrInvalidTransition},
		{&InvalidFilterError{Message: "m"}, ErrInvalidFilter},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("errors.Is(%T, %v) = false", tt.err, tt.sentinel)
		}
	}

	// Wrapped sentinels still match.
	wrapped := fmt.Errorf("%w: detail", ErrValidation)
	if !errors.Is(wrapped, ErrValidation) {
		t.Error("wrapped sentinel did not match")
	}
}

func TestDispatchErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := &DispatchError{Channel: "email", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("DispatchError does not unwrap to its cause")
	}
}
