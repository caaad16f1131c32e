// Package auth tracks the current authenticated identity and generates
// API key material.
package auth

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated indicates an operation that requires an active
// identity was attempted while signed out.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthError indicates a failure reported by the external identity
// provider during sign-in or sign-out.
type AuthError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates an AuthError with a human-readable message.
func NewAuthError(message string, err error) *AuthError {
	return &AuthError{Message: message, Err: err}
}
