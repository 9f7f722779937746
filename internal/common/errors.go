// Package common defines shared constants and error kinds used across the
// server and client layers. Callers should use errors.Is to match the kinds
// and errors.As to extract a client-facing *Error.
package common

import (
	"errors"
	"fmt"
)

var (
	// Error kinds. Every service failure unwraps to exactly one of these.
	ErrorValidation   = errors.New("validation error")
	ErrorNotFound     = errors.New("not found")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorInternal     = errors.New("internal error")

	// Token verification errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error is a failure carrying a message that is safe to show to API clients.
// Kind is one of the error kinds above; Details lists per-field problems.
type Error struct {
	Kind    error
	Message string
	Details []string
}

// NewError builds an *Error of the given kind.
func NewError(kind error, message string, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
