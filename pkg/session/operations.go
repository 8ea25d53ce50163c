package session

import (
	"context"

	"github.com/kingsocial/authkit/pkg/authstate"
	"github.com/kingsocial/authkit/pkg/transport"
)

// SignUpParams are the inputs for account registration.
type SignUpParams struct {
	Email      string
	Password   string
	Metadata   map[string]any // client-writable profile hints
	RedirectTo string         // confirmation email callback target
}

// SignInResult reports how a password sign-in concluded. When MFARequired is
// true the grant is held back and the caller must route the user to the MFA
// step: ChallengeMFA then VerifyMFA with one of Factors.
type SignInResult struct {
	MFARequired bool
	Factors     []authstate.Factor
}

// OAuthParams are the inputs for a redirect-based OAuth sign-in.
type OAuthParams struct {
	Provider   string
	RedirectTo string
	Scopes     []string
}

// OTPParams are the inputs for one-time-code sign-in. Exactly one of Email
// or Phone must be set.
type OTPParams struct {
	Email            string
	Phone            string
	ShouldCreateUser bool
	RedirectTo       string
}

// VerifyOTPParams carry an emailed or texted code back for verification.
// Purpose matches the request that produced the code: "signup", "magiclink",
// "recovery", "email_change" or "sms".
type VerifyOTPParams struct {
	Email   string
	Phone   string
	Token   string
	Purpose string
}

// UpdateUserParams carry a partial update of the signed-in user's
// client-writable metadata.
type UpdateUserParams struct {
	Email    string
	Phone    string
	Metadata map[string]any
}

// SignUp registers a new account. The service sends a confirmation email and
// the state settles unauthenticated while confirmation is pending; if the
// service is configured to auto-confirm, the returned grant is adopted and
// the push stream completes the sign-in.
func (m *Manager) SignUp(ctx context.Context, params SignUpParams) error {
	m.beginOperation()

	result, err := m.tr.SignUp(ctx, transport.SignUpParams{
		Email:      params.Email,
		Password:   params.Password,
		Data:       params.Metadata,
		RedirectTo: params.RedirectTo,
	})
	if err != nil {
		return m.failOperation(err)
	}

	if result.Session != nil {
		if err := m.tr.AdoptSession(ctx, result.Session); err != nil {
			return m.failOperation(err)
		}
		return nil
	}
	m.settleUnauthenticated()
	return nil
}

// SignIn performs a password sign-in. When the account has a verified MFA
// factor the grant is not adopted: the state stays unauthenticated and the
// result says MFA is required; no session exists until VerifyMFA succeeds.
// Otherwise adoption emits the SIGNED_IN push event, which populates the
// authenticated state. Callers that need the populated session should react
// to the status transition, not to this call returning.
func (m *Manager) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	m.beginOperation()

	raw, err := m.tr.SignInWithPassword(ctx, email, password)
	if err != nil {
		return SignInResult{}, m.failOperation(err)
	}

	if raw.User != nil {
		if verified := authstate.MapUser(raw.User).VerifiedFactors(); len(verified) > 0 {
			m.mu.Lock()
			m.pending = raw
			m.mu.Unlock()
			m.settleUnauthenticated()
			return SignInResult{MFARequired: true, Factors: verified}, nil
		}
	}

	if err := m.tr.AdoptSession(ctx, raw); err != nil {
		return SignInResult{}, m.failOperation(err)
	}
	return SignInResult{}, nil
}

// SignInWithOAuth starts a redirect-based OAuth flow and returns the URL to
// navigate the user to. No session exists yet: completion arrives through
// the push stream after the provider redirects back, so the state is left
// loading for the stream to resolve.
func (m *Manager) SignInWithOAuth(ctx context.Context, params OAuthParams) (string, error) {
	m.beginOperation()

	redirectURL, err := m.tr.OAuthURL(params.Provider, params.RedirectTo, params.Scopes)
	if err != nil {
		return "", m.failOperation(err)
	}
	return redirectURL, nil
}

// SignInWithIDToken completes a native OAuth flow: the application ran the
// provider flow itself (see pkg/oauth) and exchanges the resulting ID token
// for a session here.
func (m *Manager) SignInWithIDToken(ctx context.Context, params transport.IDTokenParams) error {
	m.beginOperation()

	raw, err := m.tr.SignInWithIDToken(ctx, params)
	if err != nil {
		return m.failOperation(err)
	}
	if err := m.tr.AdoptSession(ctx, raw); err != nil {
		return m.failOperation(err)
	}
	return nil
}

// SignInWithOTP requests a one-time code or magic link. The state settles
// unauthenticated; the grant arrives later through VerifyOTP or the link.
func (m *Manager) SignInWithOTP(ctx context.Context, params OTPParams) error {
	m.beginOperation()

	err := m.tr.SignInWithOTP(ctx, transport.OTPParams{
		Email:            params.Email,
		Phone:            params.Phone,
		ShouldCreateUser: params.ShouldCreateUser,
		RedirectTo:       params.RedirectTo,
	})
	if err != nil {
		return m.failOperation(err)
	}
	m.settleUnauthenticated()
	return nil
}

// SendMagicLink emails a sign-in link to an existing account. It is
// SignInWithOTP with account creation disabled.
func (m *Manager) SendMagicLink(ctx context.Context, email string) error {
	return m.SignInWithOTP(ctx, OTPParams{Email: email, ShouldCreateUser: false})
}

// VerifyOTP verifies an emailed or texted code. A successful verification
// that returns a grant completes the sign-in by adopting it.
func (m *Manager) VerifyOTP(ctx context.Context, params VerifyOTPParams) error {
	raw, err := m.tr.VerifyOTP(ctx, transport.VerifyOTPParams{
		Email: params.Email,
		Phone: params.Phone,
		Token: params.Token,
		Type:  params.Purpose,
	})
	if err != nil {
		return authstate.MapError(err)
	}
	if raw != nil && raw.AccessToken != "" {
		if err := m.tr.AdoptSession(ctx, raw); err != nil {
			return authstate.MapError(err)
		}
	}
	return nil
}

// SignOut revokes the session per the given scope and resets the state to
// unauthenticated. The transport clears custody even when revocation fails
// remotely, so the local state always settles signed out on success.
func (m *Manager) SignOut(ctx context.Context, scope transport.SignOutScope) error {
	m.beginOperation()

	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()

	if err := m.tr.SignOut(ctx, scope); err != nil {
		return m.failOperation(err)
	}
	m.settleUnauthenticated()
	return nil
}

// ResetPassword sends a password recovery email. The state settles
// unauthenticated while the user follows the email.
func (m *Manager) ResetPassword(ctx context.Context, email, redirectTo string) error {
	m.beginOperation()

	if err := m.tr.ResetPasswordForEmail(ctx, email, redirectTo); err != nil {
		return m.failOperation(err)
	}
	m.settleUnauthenticated()
	return nil
}

// UpdatePassword sets a new password for the signed-in user. The session and
// global status are left untouched; failures are returned, not recorded in
// the state.
func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	if _, err := m.tr.UpdateUser(ctx, transport.UpdateUserParams{Password: newPassword}); err != nil {
		return authstate.MapError(err)
	}
	return nil
}

// UpdateUser applies a partial update of the signed-in user. The user field
// refreshes from the response (the transport also emits USER_UPDATED);
// status and session stay untouched.
func (m *Manager) UpdateUser(ctx context.Context, params UpdateUserParams) error {
	_, err := m.tr.UpdateUser(ctx, transport.UpdateUserParams{
		Email: params.Email,
		Phone: params.Phone,
		Data:  params.Metadata,
	})
	if err != nil {
		return authstate.MapError(err)
	}
	return nil
}

// ResendConfirmation re-requests the signup confirmation email.
func (m *Manager) ResendConfirmation(ctx context.Context, email string) error {
	if err := m.tr.Resend(ctx, transport.ResendParams{Email: email, Type: "signup"}); err != nil {
		return authstate.MapError(err)
	}
	return nil
}

// RefreshSession recomputes the full state from a fresh grant. On failure
// the error is recorded but the rest of the state is left as it was.
func (m *Manager) RefreshSession(ctx context.Context) error {
	raw, err := m.tr.RefreshSession(ctx)
	if err != nil {
		mapped := authstate.MapError(err)
		m.transition(func(st *authstate.State) {
			st.Err = mapped
		})
		return mapped
	}

	m.transition(func(st *authstate.State) {
		user := authstate.MapUser(raw.User)
		if user == nil {
			user = st.User
		}
		if user == nil {
			// A grant with no user cannot satisfy the authenticated
			// invariant; settle signed out.
			st.Status = authstate.StatusUnauthenticated
			st.User, st.Session, st.Err = nil, nil, nil
			return
		}
		st.Status = authstate.StatusAuthenticated
		st.User = user
		st.Session = authstate.MapSession(raw)
		st.Err = nil
	})
	return nil
}
