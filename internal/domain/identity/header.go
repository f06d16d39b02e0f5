package identity

import (
	"context"
	"net/http"
	"strings"
)

// HeaderProvider trusts identity headers set by an upstream gateway:
// X-User-ID, X-User-Name, X-User-Email, and a comma-separated X-User-Scopes.
// For dev and demo deployments only; never expose it to untrusted clients.
type HeaderProvider struct{}

// NewHeaderProvider creates a HeaderProvider.
func NewHeaderProvider() *HeaderProvider {
	return &HeaderProvider{}
}

// Authenticate reads the trusted identity headers from the request.
func (p *HeaderProvider) Authenticate(_ context.Context, r *http.Request) (*User, error) {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if id == "" {
		return nil, ErrUnauthenticated
	}

	var scopes []string
	if raw := r.Header.Get("X-User-Scopes"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
	}

	return &User{
		ID:     id,
		Name:   r.Header.Get("X-User-Name"),
		Email:  r.Header.Get("X-User-Email"),
		Scopes: scopes,
	}, nil
}
