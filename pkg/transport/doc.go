// Package transport is the client for the hosted auth service behind the
// KING SOCIAL application. It is the only package that talks to the service
// or sees its wire shapes; everything above it works with the stable types in
// pkg/authstate.
//
// A single Client per process holds session custody: it persists the current
// grant through a SessionStore, refreshes tokens ahead of expiry, and signs
// authenticated requests. Session lifecycle changes are pushed to subscribers
// as an event stream, independent of the operation calls that caused them:
//
//	client, err := transport.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	sub := client.OnAuthStateChange(func(ev transport.Event, s *transport.RawSession) {
//		// SIGNED_IN, SIGNED_OUT, TOKEN_REFRESHED, USER_UPDATED
//	})
//	defer sub.Unsubscribe()
//
// Credential-producing operations (SignInWithPassword, VerifyOTP,
// SignInWithIDToken, VerifyFactor) return the granted session without making
// it current. The caller adopts it explicitly:
//
//	session, err := client.SignInWithPassword(ctx, email, password)
//	if err != nil {
//		// *transport.APIError for service rejections
//	}
//	if err := client.AdoptSession(ctx, session); err != nil {
//		// storage failure
//	}
//
// This split lets the session state machine in pkg/session withhold a grant
// until MFA verification completes, and lets redirect-based OAuth flows adopt
// a session only after the provider round-trip.
//
// Redirect-based OAuth is two-phase by design: OAuthURL returns the authorize
// URL and the caller hands control to the browser; the completed session
// arrives later through the event stream, never as a direct return value.
//
// The default SessionStore keeps the session in memory. Multi-process
// deployments can share custody through the Redis-backed store in the
// redisstore subpackage.
package transport
