// Package session implements the authentication state machine: a single
// Manager owns the canonical {status, user, session, error} tuple and is the
// only writer to it.
//
// Two inputs drive the state. Direct operations (SignIn, SignOut, VerifyOTP,
// the MFA steps) talk to the transport and report their own outcome; the
// transport's push event stream delivers session lifecycle changes that may
// complete asynchronously, after the initiating call already returned —
// OAuth redirects and email confirmations finish this way. The two are not
// ordered relative to each other, so consumers that need the populated
// session watch status transitions via OnChange rather than operation
// returns.
//
//	client, _ := transport.New(cfg)
//	mgr := session.New(client, session.WithIssuer("KING SOCIAL"))
//	defer mgr.Close()
//
//	if err := mgr.Start(ctx); err != nil {
//		// initial session fetch failed; state is StatusError
//	}
//
//	result, err := mgr.SignIn(ctx, email, password)
//	switch {
//	case err != nil:
//		// *authstate.Error with a taxonomy code
//	case result.MFARequired:
//		ch, _ := mgr.ChallengeMFA(ctx, result.Factors[0].ID)
//		err = mgr.VerifyMFA(ctx, result.Factors[0].ID, code, ch.ID)
//	}
//
// Sign-in with a verified MFA factor withholds the grant: no session is
// adopted and the state stays unauthenticated until VerifyMFA succeeds.
//
// State invariants, upheld across every transition:
//   - User and Session are both non-nil iff Status is StatusAuthenticated.
//   - A TOKEN_REFRESHED event replaces only Session; USER_UPDATED only User.
//   - After Close, no transition is applied: late-arriving results are
//     dropped rather than mutating disposed state.
//
// All failures are returned as *authstate.Error values, never panics, and
// raw transport errors never escape.
package session
