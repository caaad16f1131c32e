// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/lifecycle"
	"github.com/keydock/keydock/internal/store"
)

// Handler holds the basic endpoints that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is the root endpoint.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from Keydock!",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeDomainError maps domain errors to HTTP responses. Unrecognized
// errors become 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, err error) {
	var authErr *auth.AuthError
	var storeErr *store.StoreError

	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", authErr.Message)
	case errors.Is(err, lifecycle.ErrDeleteNotConfirmed):
		writeError(w, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED",
			"Deletion requires confirmation; set the X-Confirm header to true")
	case errors.As(err, &storeErr):
		writeError(w, http.StatusBadGateway, "STORE_UNAVAILABLE", "Key store request failed")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
