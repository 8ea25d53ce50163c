package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

var (
	// ErrInvalidCode is returned when the provider rejects an authorization
	// code exchange.
	ErrInvalidCode = errors.New("oauth: invalid authorization code")
	// ErrNoIDToken is returned when the provider's token response carries no
	// ID token.
	ErrNoIDToken = errors.New("oauth: provider returned no id_token")
	// ErrStateGeneration wraps failures producing a CSRF state token.
	ErrStateGeneration = errors.New("oauth: failed to generate state token")
)

// ProviderAdapter abstracts provider-specific OAuth behavior behind a
// minimal interface. Implementations encapsulate protocol details (endpoint
// URLs, token exchange) and expose only what the native sign-in flow needs:
// an authorization URL and the ID token grant that feeds
// transport.SignInWithIDToken.
type ProviderAdapter interface {
	// ProviderID returns the stable identifier the auth service expects,
	// e.g. "google", "apple".
	ProviderID() string

	// AuthURL builds the provider authorization URL for the given CSRF
	// state and OIDC nonce.
	AuthURL(state, nonce string) string

	// ExchangeIDToken trades the callback's authorization code for the
	// provider's ID token. Returns ErrInvalidCode on rejected codes and
	// ErrNoIDToken when the response lacks one.
	ExchangeIDToken(ctx context.Context, code string) (IDTokenGrant, error)
}

// IDTokenGrant is the provider-issued credential a native flow hands to the
// auth service.
type IDTokenGrant struct {
	Provider    string
	IDToken     string
	AccessToken string
}

// GenerateState produces a cryptographically secure CSRF state token for an
// authorization request. The same generator serves as an OIDC nonce source.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrStateGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
