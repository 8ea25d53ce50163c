package session

import (
	"context"

	"github.com/kingsocial/authkit/pkg/transport"
)

// Transport is the slice of the auth transport client the manager consumes.
// It exists so tests can substitute a fake; *transport.Client satisfies it.
type Transport interface {
	GetSession(ctx context.Context) (*transport.RawSession, error)
	OnAuthStateChange(fn transport.ListenerFunc) *transport.Subscription
	AdoptSession(ctx context.Context, session *transport.RawSession) error

	SignUp(ctx context.Context, params transport.SignUpParams) (*transport.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*transport.RawSession, error)
	SignInWithIDToken(ctx context.Context, params transport.IDTokenParams) (*transport.RawSession, error)
	SignInWithOTP(ctx context.Context, params transport.OTPParams) error
	VerifyOTP(ctx context.Context, params transport.VerifyOTPParams) (*transport.RawSession, error)
	OAuthURL(provider, redirectTo string, scopes []string) (string, error)
	SignOut(ctx context.Context, scope transport.SignOutScope) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUser(ctx context.Context, params transport.UpdateUserParams) (*transport.RawUser, error)
	Resend(ctx context.Context, params transport.ResendParams) error
	RefreshSession(ctx context.Context) (*transport.RawSession, error)

	EnrollFactor(ctx context.Context, params transport.EnrollFactorParams) (*transport.RawEnrollment, error)
	CreateChallenge(ctx context.Context, params transport.ChallengeFactorParams) (*transport.RawChallenge, error)
	VerifyFactor(ctx context.Context, params transport.VerifyFactorParams) (*transport.RawSession, error)
	UnenrollFactor(ctx context.Context, params transport.UnenrollFactorParams) error
	ListFactors(ctx context.Context) ([]transport.RawFactor, error)
}

var _ Transport = (*transport.Client)(nil)
