package oauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ProviderGoogle is the provider identifier the auth service expects for
// Google ID tokens.
const ProviderGoogle = "google"

// GoogleConfig holds configuration for the Google OAuth provider.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

type googleAdapter struct {
	conf *oauth2.Config
}

// NewGoogleAdapter creates a Google OAuth provider adapter for native
// sign-in flows.
func NewGoogleAdapter(cfg GoogleConfig) ProviderAdapter {
	return &googleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

func (a *googleAdapter) ProviderID() string {
	return ProviderGoogle
}

// AuthURL builds the Google authorization URL. The nonce binds the eventual
// ID token to this authorization request.
func (a *googleAdapter) AuthURL(state, nonce string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam("nonce", nonce))
	}
	return a.conf.AuthCodeURL(state, opts...)
}

// ExchangeIDToken trades the authorization code for Google's ID token.
func (a *googleAdapter) ExchangeIDToken(ctx context.Context, code string) (IDTokenGrant, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return IDTokenGrant{}, errors.Join(ErrInvalidCode, err)
	}

	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return IDTokenGrant{}, ErrNoIDToken
	}

	return IDTokenGrant{
		Provider:    ProviderGoogle,
		IDToken:     idToken,
		AccessToken: tok.AccessToken,
	}, nil
}

var _ ProviderAdapter = (*googleAdapter)(nil)
