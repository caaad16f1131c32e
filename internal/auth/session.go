package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/keydock/keydock/internal/model"
)

// ChangeHandler is invoked once per session state transition with the new
// identity, or nil when the session is signed out.
type ChangeHandler func(identity *model.Identity)

// Session holds the current authenticated identity. It is the only
// mutable shared state in the system: transitions happen exclusively
// through SignIn and SignOut, and every transition bumps the epoch
// counter so in-flight operations can detect that their session is no
// longer current.
type Session struct {
	authenticator Authenticator
	logger        *slog.Logger

	// transitionMu serializes sign-in/sign-out so change notifications
	// are delivered in transition order.
	transitionMu sync.Mutex

	mu       sync.Mutex
	current  *model.Identity
	epoch    uint64
	handlers []ChangeHandler
}

// NewSession creates a signed-out Session.
func NewSession(authenticator Authenticator, logger *slog.Logger) *Session {
	return &Session{
		authenticator: authenticator,
		logger:        logger.With("component", "auth.session"),
	}
}

// Current returns the active identity, or nil when signed out.
func (s *Session) Current() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

// Epoch returns the current session epoch. It advances on every
// transition; a response captured under an older epoch is stale.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Snapshot returns the active identity together with the epoch it was
// read under, for stale-response guards.
func (s *Session) Snapshot() (*model.Identity, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, s.epoch
	}
	identity := *s.current
	return &identity, s.epoch
}

// OnChange registers a handler for session transitions. The handler is
// invoked immediately with the current state, then exactly once per
// subsequent transition. This is the sole mechanism by which other
// components learn about identity changes.
func (s *Session) OnChange(handler ChangeHandler) {
	s.mu.Lock()
	s.handlers = append(s.handlers, handler)
	var initial *model.Identity
	if s.current != nil {
		identity := *s.current
		initial = &identity
	}
	s.mu.Unlock()

	handler(initial)
}

// SignIn verifies the credential with the Authenticator and, on success,
// makes the resulting identity current. Fails with *AuthError when the
// provider rejects the credential; the session is left unchanged.
func (s *Session) SignIn(ctx context.Context, credential string) (*model.Identity, error) {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	identity, err := s.authenticator.Verify(ctx, credential)
	if err != nil {
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			err = NewAuthError("sign-in failed", err)
		}
		s.logger.Warn("sign-in rejected", "error", err)
		return nil, err
	}

	s.transition(identity)
	s.logger.Info("signed in", "user_id", identity.ID)
	return identity, nil
}

// SignOut signs out through the Authenticator and clears the current
// identity. Fails with *AuthError if the provider's sign-out fails; the
// session is cleared only on success.
func (s *Session) SignOut(ctx context.Context) error {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	if err := s.authenticator.SignOut(ctx); err != nil {
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			err = NewAuthError("sign-out failed", err)
		}
		s.logger.Warn("sign-out failed", "error", err)
		return err
	}

	s.transition(nil)
	s.logger.Info("signed out")
	return nil
}

// transition updates the current identity, advances the epoch and fires
// change handlers. Callers must hold transitionMu.
func (s *Session) transition(identity *model.Identity) {
	s.mu.Lock()
	s.current = identity
	s.epoch++
	handlers := make([]ChangeHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, handler := range handlers {
		var snapshot *model.Identity
		if identity != nil {
			copied := *identity
			snapshot = &copied
		}
		handler(snapshot)
	}
}
