package session

import (
	"context"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/kingsocial/authkit/pkg/authstate"
	"github.com/kingsocial/authkit/pkg/transport"
)

// Enrollment is the provisioning payload for a newly enrolled factor. The
// caller renders the URI as a QR code or shows the secret for manual entry.
type Enrollment struct {
	ID     string
	Type   authstate.FactorType
	Secret string
	URI    string
}

// QRCodePNG renders the provisioning URI as a PNG for authenticator apps.
// Size is in pixels; values below 64 are raised to 256.
func (e Enrollment) QRCodePNG(size int) ([]byte, error) {
	if size < 64 {
		size = 256
	}
	return qrcode.Encode(e.URI, qrcode.Medium, size)
}

// Challenge is a single-use, server-expiring MFA challenge. Verify promptly;
// expiry is enforced remotely, not tracked here.
type Challenge struct {
	ID        string
	ExpiresAt time.Time
}

// EnrollMFA registers a new factor for the signed-in user and returns its
// provisioning payload. The factor starts unverified and auth status does
// not change; VerifyMFA with a first code confirms the enrollment.
func (m *Manager) EnrollMFA(ctx context.Context, factorType authstate.FactorType, friendlyName string) (*Enrollment, error) {
	raw, err := m.tr.EnrollFactor(ctx, transport.EnrollFactorParams{
		FactorType:   string(factorType),
		FriendlyName: friendlyName,
		Issuer:       m.issuer,
		AccessToken:  m.pendingToken(),
	})
	if err != nil {
		return nil, authstate.MapError(err)
	}
	return &Enrollment{
		ID:     raw.ID,
		Type:   authstate.FactorType(raw.Type),
		Secret: raw.TOTP.Secret,
		URI:    raw.TOTP.URI,
	}, nil
}

// ChallengeMFA issues a challenge for the factor. It must immediately
// precede VerifyMFA in a sign-in-time flow; challenges are single-use.
func (m *Manager) ChallengeMFA(ctx context.Context, factorID string) (*Challenge, error) {
	raw, err := m.tr.CreateChallenge(ctx, transport.ChallengeFactorParams{
		FactorID:    factorID,
		AccessToken: m.pendingToken(),
	})
	if err != nil {
		return nil, authstate.MapError(err)
	}
	ch := &Challenge{ID: raw.ID}
	if raw.ExpiresAt > 0 {
		ch.ExpiresAt = time.Unix(raw.ExpiresAt, 0)
	}
	return ch, nil
}

// VerifyMFA verifies a code against its challenge. During a sign-in-time
// flow this completes the pending sign-in: the withheld grant is upgraded
// and adopted, and the push stream transitions the state to authenticated.
// During enrollment it confirms the factor. A wrong code returns a mapped
// error and leaves the global auth status untouched.
func (m *Manager) VerifyMFA(ctx context.Context, factorID, code, challengeID string) error {
	m.mu.Lock()
	pending := m.pending
	m.mu.Unlock()

	var token string
	if pending != nil {
		token = pending.AccessToken
	}

	upgraded, err := m.tr.VerifyFactor(ctx, transport.VerifyFactorParams{
		FactorID:    factorID,
		ChallengeID: challengeID,
		Code:        code,
		AccessToken: token,
	})
	if err != nil {
		return authstate.MapError(err)
	}

	grant := upgraded
	if grant == nil || grant.AccessToken == "" {
		grant = pending
	}
	if grant == nil {
		// Enrollment confirmation while already signed in; nothing to adopt.
		return nil
	}

	if err := m.tr.AdoptSession(ctx, grant); err != nil {
		return m.failOperation(err)
	}
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	return nil
}

// UnenrollMFA removes a factor. Removal is not idempotent on absence; a
// caller racing another removal sees the service's error.
func (m *Manager) UnenrollMFA(ctx context.Context, factorID string) error {
	err := m.tr.UnenrollFactor(ctx, transport.UnenrollFactorParams{FactorID: factorID})
	if err != nil {
		return authstate.MapError(err)
	}
	return nil
}

// ListMFAFactors returns a read-only snapshot of the enrolled factors.
func (m *Manager) ListMFAFactors(ctx context.Context) ([]authstate.Factor, error) {
	raws, err := m.tr.ListFactors(ctx)
	if err != nil {
		return nil, authstate.MapError(err)
	}
	return authstate.MapFactors(raws), nil
}

// pendingToken returns the withheld grant's access token during a
// sign-in-time MFA flow, empty otherwise.
func (m *Manager) pendingToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return ""
	}
	return m.pending.AccessToken
}
