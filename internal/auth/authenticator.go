package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/keydock/keydock/internal/model"
)

// Authenticator is the external identity-provider collaborator.
// Verify exchanges a client-presented credential for a stable identity;
// it fails with *AuthError when the provider rejects the credential.
type Authenticator interface {
	Verify(ctx context.Context, credential string) (*model.Identity, error)
	SignOut(ctx context.Context) error
}

// TokenAuthenticator verifies bearer credentials against an identity
// provider's token-info endpoint.
type TokenAuthenticator struct {
	endpoint string
	client   *http.Client
}

// NewTokenAuthenticator creates an Authenticator backed by the given
// token-info endpoint.
func NewTokenAuthenticator(endpoint string) *TokenAuthenticator {
	return &TokenAuthenticator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// tokenInfo is the subset of the provider's response we care about.
type tokenInfo struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Verify calls the token-info endpoint with the credential and maps the
// response to an Identity.
func (a *TokenAuthenticator) Verify(ctx context.Context, credential string) (*model.Identity, error) {
	if credential == "" {
		return nil, NewAuthError("missing credential", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint, nil)
	if err != nil {
		return nil, NewAuthError("build token-info request", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, NewAuthError("identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewAuthError(fmt.Sprintf("credential rejected (status %d)", resp.StatusCode), nil)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, NewAuthError("decode token-info response", err)
	}
	if info.Sub == "" {
		return nil, NewAuthError("token-info response missing subject", nil)
	}

	return &model.Identity{
		ID:          info.Sub,
		DisplayName: info.Name,
		Email:       info.Email,
	}, nil
}

// SignOut completes immediately; bearer credentials are not revocable
// through the token-info endpoint, the session simply forgets them.
func (a *TokenAuthenticator) SignOut(ctx context.Context) error {
	return nil
}

// StaticAuthenticator resolves credentials from a fixed table. Used in
// development mode and tests where no identity provider is available.
type StaticAuthenticator struct {
	identities map[string]model.Identity
}

// NewStaticAuthenticator creates a StaticAuthenticator over the given
// credential-to-identity table.
func NewStaticAuthenticator(identities map[string]model.Identity) *StaticAuthenticator {
	return &StaticAuthenticator{identities: identities}
}

// Verify looks the credential up in the table.
func (a *StaticAuthenticator) Verify(ctx context.Context, credential string) (*model.Identity, error) {
	identity, ok := a.identities[credential]
	if !ok {
		return nil, NewAuthError("unknown credential", nil)
	}
	return &identity, nil
}

// SignOut is a no-op for static identities.
func (a *StaticAuthenticator) SignOut(ctx context.Context) error {
	return nil
}
