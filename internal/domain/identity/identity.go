// Package identity abstracts who is making a request. Exactly one Provider
// is active per deployment, chosen by configuration; call sites never know
// which concrete provider authenticated the user.
package identity

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-faster/errors"
)

// ErrUnauthenticated is returned when a request carries no valid identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// ScopeAdmin marks users allowed to use the admin surface.
const ScopeAdmin = "admin"

// User is the authenticated caller.
type User struct {
	ID     string
	Name   string
	Email  string
	Scopes []string
}

// HasScope reports whether the user carries the given scope.
func (u *User) HasScope(scope string) bool {
	return slices.Contains(u.Scopes, scope)
}

// Provider authenticates an incoming request. Implementations must be safe
// for concurrent use.
type Provider interface {
	Authenticate(ctx context.Context, r *http.Request) (*User, error)
}

// Profile holds a customer's stored shipping defaults.
type Profile struct {
	UserID  string
	Name    string
	Email   string
	Address string
	City    string
	State   string
	Pincode string
	Phone   string
	Country string
}

// ProfileRepository reads customer profiles.
type ProfileRepository interface {
	// GetByUserID returns nil without error when no profile exists yet.
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
}
