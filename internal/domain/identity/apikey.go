package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// APIKeyInfo is a stored API key record. The raw key is never persisted;
// only its HMAC-SHA256 hash is.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// APIKeyRepository provides lookup of active API keys by their hash.
type APIKeyRepository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// APIKeyProvider authenticates requests via an api_key header, hashed with
// a peppered HMAC-SHA256 before lookup. This is the production provider.
type APIKeyProvider struct {
	keys   APIKeyRepository
	pepper []byte
}

// NewAPIKeyProvider creates an APIKeyProvider with the given repository and
// HMAC pepper.
func NewAPIKeyProvider(keys APIKeyRepository, pepper []byte) *APIKeyProvider {
	return &APIKeyProvider{keys: keys, pepper: pepper}
}

// HashKey computes the peppered HMAC-SHA256 hex digest of a raw API key.
func HashKey(pepper []byte, raw string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate looks up the request's api_key header by hash and performs a
// constant-time comparison against the stored digest to guard against timing
// side-channels on mismatched rows.
func (p *APIKeyProvider) Authenticate(ctx context.Context, r *http.Request) (*User, error) {
	raw := r.Header.Get("api_key")
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	mac := hmac.New(sha256.New, p.pepper)
	mac.Write([]byte(raw))
	sum := mac.Sum(nil)

	info, err := p.keys.FindByHash(ctx, hex.EncodeToString(sum))
	if err != nil {
		return nil, ErrUnauthenticated
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if subtle.ConstantTimeCompare(sum, stored) != 1 {
		return nil, ErrUnauthenticated
	}

	return &User{
		ID:     info.ID,
		Name:   info.Name,
		Scopes: info.Scopes,
	}, nil
}
