package oauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ProviderApple is the provider identifier the auth service expects for
// Apple ID tokens.
const ProviderApple = "apple"

// appleEndpoint is Sign in with Apple's OAuth endpoint; x/oauth2 ships no
// preset for it.
var appleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://appleid.apple.com/auth/authorize",
	TokenURL: "https://appleid.apple.com/auth/token",
}

// AppleConfig holds configuration for the Sign in with Apple provider.
// ClientSecret is the pre-generated JWT Apple requires, not a static secret;
// rotating it is the caller's concern.
type AppleConfig struct {
	ClientID     string   `env:"APPLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"APPLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"APPLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"APPLE_OAUTH_SCOPES" envSeparator:"," envDefault:"name,email"`
}

type appleAdapter struct {
	conf *oauth2.Config
}

// NewAppleAdapter creates a Sign in with Apple provider adapter for native
// sign-in flows.
func NewAppleAdapter(cfg AppleConfig) ProviderAdapter {
	return &appleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     appleEndpoint,
		},
	}
}

func (a *appleAdapter) ProviderID() string {
	return ProviderApple
}

// AuthURL builds the Apple authorization URL. Apple requires form_post
// response mode whenever name or email scopes are requested.
func (a *appleAdapter) AuthURL(state, nonce string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_mode", "form_post")}
	if nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam("nonce", nonce))
	}
	return a.conf.AuthCodeURL(state, opts...)
}

// ExchangeIDToken trades the authorization code for Apple's ID token.
func (a *appleAdapter) ExchangeIDToken(ctx context.Context, code string) (IDTokenGrant, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return IDTokenGrant{}, errors.Join(ErrInvalidCode, err)
	}

	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return IDTokenGrant{}, ErrNoIDToken
	}

	return IDTokenGrant{
		Provider:    ProviderApple,
		IDToken:     idToken,
		AccessToken: tok.AccessToken,
	}, nil
}

var _ ProviderAdapter = (*appleAdapter)(nil)
