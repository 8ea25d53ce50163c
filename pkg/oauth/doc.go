// Package oauth provides provider adapters for native OAuth sign-in, where
// the application runs the provider flow itself instead of redirecting
// through the auth service.
//
// The flow stays two-phase: AuthURL hands control to the provider, and the
// callback's code is exchanged for an ID token which completes sign-in
// through the session manager:
//
//	adapter := oauth.NewGoogleAdapter(cfg)
//	state, _ := oauth.GenerateState()
//	nonce, _ := oauth.GenerateState()
//	// redirect the user to adapter.AuthURL(state, nonce), then in the callback:
//	grant, err := adapter.ExchangeIDToken(ctx, code)
//	if err != nil {
//		// ErrInvalidCode or ErrNoIDToken
//	}
//	err = mgr.SignInWithIDToken(ctx, transport.IDTokenParams{
//		Provider: grant.Provider,
//		IDToken:  grant.IDToken,
//		Nonce:    nonce,
//	})
//
// Verifying the state parameter on the callback is the caller's
// responsibility; GenerateState only produces the token.
package oauth
