package transport

import (
	"context"
	"net/http"
)

// MFA sub-API. Each operation authenticates with the current session's token
// unless the params carry an explicit AccessToken, which sign-in-time MFA
// needs: the grant under verification has not been adopted yet, so its token
// is not in custody.

// EnrollFactor registers a new MFA factor and returns its provisioning
// payload. The factor starts unverified; auth status does not change.
func (c *Client) EnrollFactor(ctx context.Context, params EnrollFactorParams) (*RawEnrollment, error) {
	token, err := c.resolveToken(params.AccessToken)
	if err != nil {
		return nil, err
	}
	if params.FactorType == "" {
		params.FactorType = "totp"
	}

	var enrollment RawEnrollment
	if err := c.do(ctx, http.MethodPost, "/factors", nil, params, &enrollment, token); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CreateChallenge issues a single-use challenge for the factor. The challenge
// expires server-side; call VerifyFactor promptly.
func (c *Client) CreateChallenge(ctx context.Context, params ChallengeFactorParams) (*RawChallenge, error) {
	token, err := c.resolveToken(params.AccessToken)
	if err != nil {
		return nil, err
	}

	var challenge RawChallenge
	if err := c.do(ctx, http.MethodPost, "/factors/"+params.FactorID+"/challenge", nil, struct{}{}, &challenge, token); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// VerifyFactor verifies an MFA code against its challenge. On success the
// service returns an upgraded session; it is not adopted here.
func (c *Client) VerifyFactor(ctx context.Context, params VerifyFactorParams) (*RawSession, error) {
	token, err := c.resolveToken(params.AccessToken)
	if err != nil {
		return nil, err
	}

	var session RawSession
	if err := c.do(ctx, http.MethodPost, "/factors/"+params.FactorID+"/verify", nil, params, &session, token); err != nil {
		return nil, err
	}
	return &session, nil
}

// UnenrollFactor removes a factor. Not idempotent: removing an absent factor
// fails, so racing callers see an error.
func (c *Client) UnenrollFactor(ctx context.Context, params UnenrollFactorParams) error {
	token, err := c.resolveToken(params.AccessToken)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/factors/"+params.FactorID, nil, nil, nil, token)
}

// ListFactors returns the enrolled factors of the authenticated user.
func (c *Client) ListFactors(ctx context.Context) ([]RawFactor, error) {
	user, err := c.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	return user.Factors, nil
}

// resolveToken prefers an explicit override over session custody.
func (c *Client) resolveToken(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return c.requireToken()
}
