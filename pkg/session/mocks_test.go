package session_test

import (
	"context"
	"sync"
	"time"

	"github.com/kingsocial/authkit/pkg/transport"
)

// fakeTransport is a scriptable stand-in for the auth transport. Behaviors
// default to benign no-ops; tests override the function fields they exercise.
// AdoptSession mirrors the real client: it derives the expiry, takes custody
// and emits SIGNED_IN, which is what drives the manager's push path.
type fakeTransport struct {
	mu       sync.Mutex
	listener transport.ListenerFunc
	adopted  *transport.RawSession

	getSessionFunc    func(ctx context.Context) (*transport.RawSession, error)
	signUpFunc        func(ctx context.Context, params transport.SignUpParams) (*transport.SignUpResult, error)
	signInFunc        func(ctx context.Context, email, password string) (*transport.RawSession, error)
	idTokenFunc       func(ctx context.Context, params transport.IDTokenParams) (*transport.RawSession, error)
	otpFunc           func(ctx context.Context, params transport.OTPParams) error
	verifyOTPFunc     func(ctx context.Context, params transport.VerifyOTPParams) (*transport.RawSession, error)
	signOutFunc       func(ctx context.Context, scope transport.SignOutScope) error
	resetFunc         func(ctx context.Context, email, redirectTo string) error
	updateUserFunc    func(ctx context.Context, params transport.UpdateUserParams) (*transport.RawUser, error)
	resendFunc        func(ctx context.Context, params transport.ResendParams) error
	refreshFunc       func(ctx context.Context) (*transport.RawSession, error)
	enrollFunc        func(ctx context.Context, params transport.EnrollFactorParams) (*transport.RawEnrollment, error)
	challengeFunc     func(ctx context.Context, params transport.ChallengeFactorParams) (*transport.RawChallenge, error)
	verifyFactorFunc  func(ctx context.Context, params transport.VerifyFactorParams) (*transport.RawSession, error)
	unenrollFunc      func(ctx context.Context, params transport.UnenrollFactorParams) error
	listFactorsFunc   func(ctx context.Context) ([]transport.RawFactor, error)
	adoptSessionCalls int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

func (f *fakeTransport) emit(event transport.Event, session *transport.RawSession) {
	f.mu.Lock()
	listener := f.listener
	f.mu.Unlock()
	if listener != nil {
		listener(event, session)
	}
}

func (f *fakeTransport) adoptedSession() *transport.RawSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adopted
}

func (f *fakeTransport) adoptCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adoptSessionCalls
}

func (f *fakeTransport) GetSession(ctx context.Context) (*transport.RawSession, error) {
	if f.getSessionFunc != nil {
		return f.getSessionFunc(ctx)
	}
	return nil, nil
}

func (f *fakeTransport) OnAuthStateChange(fn transport.ListenerFunc) *transport.Subscription {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
	return &transport.Subscription{}
}

func (f *fakeTransport) AdoptSession(ctx context.Context, session *transport.RawSession) error {
	if session == nil || session.AccessToken == "" {
		return transport.ErrNoSession
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Unix() + session.ExpiresIn
	}
	f.mu.Lock()
	f.adopted = session
	f.adoptSessionCalls++
	f.mu.Unlock()
	f.emit(transport.EventSignedIn, session)
	return nil
}

func (f *fakeTransport) SignUp(ctx context.Context, params transport.SignUpParams) (*transport.SignUpResult, error) {
	if f.signUpFunc != nil {
		return f.signUpFunc(ctx, params)
	}
	return &transport.SignUpResult{User: &transport.RawUser{ID: "user-1", Email: params.Email}}, nil
}

func (f *fakeTransport) SignInWithPassword(ctx context.Context, email, password string) (*transport.RawSession, error) {
	if f.signInFunc != nil {
		return f.signInFunc(ctx, email, password)
	}
	return sessionWithUser("access-1", nil), nil
}

func (f *fakeTransport) SignInWithIDToken(ctx context.Context, params transport.IDTokenParams) (*transport.RawSession, error) {
	if f.idTokenFunc != nil {
		return f.idTokenFunc(ctx, params)
	}
	return sessionWithUser("access-1", nil), nil
}

func (f *fakeTransport) SignInWithOTP(ctx context.Context, params transport.OTPParams) error {
	if f.otpFunc != nil {
		return f.otpFunc(ctx, params)
	}
	return nil
}

func (f *fakeTransport) VerifyOTP(ctx context.Context, params transport.VerifyOTPParams) (*transport.RawSession, error) {
	if f.verifyOTPFunc != nil {
		return f.verifyOTPFunc(ctx, params)
	}
	return sessionWithUser("access-1", nil), nil
}

func (f *fakeTransport) OAuthURL(provider, redirectTo string, scopes []string) (string, error) {
	if provider == "" {
		return "", transport.ErrInvalidConfig
	}
	return "https://auth.example.com/authorize?provider=" + provider, nil
}

func (f *fakeTransport) SignOut(ctx context.Context, scope transport.SignOutScope) error {
	if f.signOutFunc != nil {
		return f.signOutFunc(ctx, scope)
	}
	f.mu.Lock()
	f.adopted = nil
	f.mu.Unlock()
	f.emit(transport.EventSignedOut, nil)
	return nil
}

func (f *fakeTransport) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	if f.resetFunc != nil {
		return f.resetFunc(ctx, email, redirectTo)
	}
	return nil
}

func (f *fakeTransport) UpdateUser(ctx context.Context, params transport.UpdateUserParams) (*transport.RawUser, error) {
	if f.updateUserFunc != nil {
		return f.updateUserFunc(ctx, params)
	}
	return &transport.RawUser{ID: "user-1"}, nil
}

func (f *fakeTransport) Resend(ctx context.Context, params transport.ResendParams) error {
	if f.resendFunc != nil {
		return f.resendFunc(ctx, params)
	}
	return nil
}

func (f *fakeTransport) RefreshSession(ctx context.Context) (*transport.RawSession, error) {
	if f.refreshFunc != nil {
		return f.refreshFunc(ctx)
	}
	return nil, transport.ErrNoSession
}

func (f *fakeTransport) EnrollFactor(ctx context.Context, params transport.EnrollFactorParams) (*transport.RawEnrollment, error) {
	if f.enrollFunc != nil {
		return f.enrollFunc(ctx, params)
	}
	enrollment := &transport.RawEnrollment{ID: "factor-1", Type: "totp"}
	enrollment.TOTP.Secret = "JBSWY3DP"
	enrollment.TOTP.URI = "otpauth://totp/app:user?secret=JBSWY3DP"
	return enrollment, nil
}

func (f *fakeTransport) CreateChallenge(ctx context.Context, params transport.ChallengeFactorParams) (*transport.RawChallenge, error) {
	if f.challengeFunc != nil {
		return f.challengeFunc(ctx, params)
	}
	return &transport.RawChallenge{ID: "challenge-1"}, nil
}

func (f *fakeTransport) VerifyFactor(ctx context.Context, params transport.VerifyFactorParams) (*transport.RawSession, error) {
	if f.verifyFactorFunc != nil {
		return f.verifyFactorFunc(ctx, params)
	}
	return nil, nil
}

func (f *fakeTransport) UnenrollFactor(ctx context.Context, params transport.UnenrollFactorParams) error {
	if f.unenrollFunc != nil {
		return f.unenrollFunc(ctx, params)
	}
	return nil
}

func (f *fakeTransport) ListFactors(ctx context.Context) ([]transport.RawFactor, error) {
	if f.listFactorsFunc != nil {
		return f.listFactorsFunc(ctx)
	}
	return nil, nil
}

// sessionWithUser builds a raw session grant; factors, when given, attach to
// the user.
func sessionWithUser(accessToken string, factors []transport.RawFactor) *transport.RawSession {
	return &transport.RawSession{
		AccessToken:  accessToken,
		RefreshToken: "refresh-1",
		TokenType:    "bearer",
		ExpiresIn:    3600,
		User: &transport.RawUser{
			ID:      "user-1",
			Email:   "a@example.com",
			Factors: factors,
		},
	}
}
