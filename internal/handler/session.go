package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/metrics"
	"github.com/keydock/keydock/internal/model"
)

// SessionHandler manages the sign-in and sign-out endpoints for the
// single application session.
type SessionHandler struct {
	logger  *slog.Logger
	session *auth.Session
	metrics metrics.Recorder
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(logger *slog.Logger, session *auth.Session, recorder metrics.Recorder) *SessionHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionHandler{
		logger:  logger,
		session: session,
		metrics: recorder,
	}
}

// SessionResponse is the body returned by the session endpoints.
type SessionResponse struct {
	Identity *model.Identity `json:"identity"`
}

// SignIn handles POST /api/v1/session.
// The credential travels in the Authorization header as a bearer token.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	credential := bearerCredential(r)
	if credential == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Authorization header with a bearer credential is required")
		return
	}

	identity, err := h.session.SignIn(r.Context(), credential)
	if err != nil {
		h.metrics.IncSignIn("failure")
		writeDomainError(w, err)
		return
	}

	h.metrics.IncSignIn("success")
	writeJSON(w, http.StatusOK, SessionResponse{Identity: identity})
}

// Current handles GET /api/v1/session.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	identity := h.session.Current()
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "No active session")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Identity: identity})
}

// SignOut handles DELETE /api/v1/session.
// Signing out of an already signed-out session succeeds.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SignOut(r.Context()); err != nil {
		h.logger.Error("sign-out failed", slog.String("error", err.Error()))
		h.metrics.IncSignOut("failure")
		writeDomainError(w, err)
		return
	}
	h.metrics.IncSignOut("success")
	w.WriteHeader(http.StatusNoContent)
}

// bearerCredential extracts the token from an Authorization header.
func bearerCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
