// Package model defines domain entities for the application.
package model

// Identity represents the authenticated principal for the current session.
// It is created on successful sign-in and cleared on sign-out.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email"`
}
