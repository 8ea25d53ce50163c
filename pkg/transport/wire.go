package transport

// Raw wire shapes returned by the remote auth service. Only the fields the
// authstate mapper reads are declared; anything else the service sends is
// decoded and discarded, keeping this package the single point of trust for
// external payload shape.

// RawUser is the remote representation of an authenticated principal.
type RawUser struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud"`
	Email            string         `json:"email"`
	EmailConfirmedAt string         `json:"email_confirmed_at"`
	Phone            string         `json:"phone"`
	PhoneConfirmedAt string         `json:"phone_confirmed_at"`
	CreatedAt        string         `json:"created_at"`
	LastSignInAt     string         `json:"last_sign_in_at"`
	AppMetadata      map[string]any `json:"app_metadata"`
	UserMetadata     map[string]any `json:"user_metadata"`
	Identities       []RawIdentity  `json:"identities"`
	Factors          []RawFactor    `json:"factors"`
}

// RawIdentity is a linked external-identity record, one per federated provider.
type RawIdentity struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Provider     string `json:"provider"`
	CreatedAt    string `json:"created_at"`
	LastSignInAt string `json:"last_sign_in_at"`
}

// RawFactor is an enrolled MFA factor record.
type RawFactor struct {
	ID           string `json:"id"`
	FactorType   string `json:"factor_type"`
	Status       string `json:"status"`
	FriendlyName string `json:"friendly_name"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// RawSession is a live credential grant. ExpiresAt is epoch seconds; older
// service versions omit it, in which case it is derived from ExpiresIn at
// adoption time.
type RawSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         *RawUser `json:"user"`
}

// RawChallenge is a short-lived server-issued MFA challenge. Expiry is
// server-enforced; it is carried here for display only.
type RawChallenge struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expires_at"`
}

// RawEnrollment is the provisioning payload returned by factor enrollment.
type RawEnrollment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	TOTP struct {
		QRCode string `json:"qr_code"`
		Secret string `json:"secret"`
		URI    string `json:"uri"`
	} `json:"totp"`
}

// SignUpParams are the inputs for user registration.
type SignUpParams struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	Data       map[string]any `json:"data,omitempty"`
	RedirectTo string         `json:"-"`
}

// SignUpResult carries the registration outcome. Session is non-nil only when
// the service is configured to auto-confirm new accounts.
type SignUpResult struct {
	User    *RawUser
	Session *RawSession
}

// OTPParams are the inputs for one-time-code or magic-link sign-in.
// Exactly one of Email or Phone must be set.
type OTPParams struct {
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	ShouldCreateUser bool   `json:"create_user"`
	RedirectTo       string `json:"-"`
}

// VerifyOTPParams are the inputs for verifying an emailed or texted code.
// Type is the purpose of the original code: "signup", "magiclink",
// "recovery", "email_change" or "sms".
type VerifyOTPParams struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

// UpdateUserParams carries a partial update of the authenticated user.
// Zero-valued fields are omitted from the request.
type UpdateUserParams struct {
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ResendParams re-requests a confirmation message. Type is "signup" or
// "email_change".
type ResendParams struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// IDTokenParams are the inputs for native OAuth sign-in, where the
// application completed the provider flow itself and holds an ID token.
type IDTokenParams struct {
	Provider    string `json:"provider"`
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token,omitempty"`
	Nonce       string `json:"nonce,omitempty"`
}

// EnrollFactorParams are the inputs for MFA factor enrollment.
type EnrollFactorParams struct {
	FactorType   string `json:"factor_type"`
	FriendlyName string `json:"friendly_name,omitempty"`
	Issuer       string `json:"issuer,omitempty"`

	// AccessToken overrides the current session's token when set. Used for
	// sign-in-time MFA where the session has not been adopted yet.
	AccessToken string `json:"-"`
}

// ChallengeFactorParams identify the factor to challenge.
type ChallengeFactorParams struct {
	FactorID    string
	AccessToken string
}

// VerifyFactorParams carry an MFA code together with its single-use challenge.
type VerifyFactorParams struct {
	FactorID    string
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
	AccessToken string `json:"-"`
}

// UnenrollFactorParams identify the factor to remove.
type UnenrollFactorParams struct {
	FactorID    string
	AccessToken string
}

// SignOutScope controls which sessions a sign-out revokes.
type SignOutScope string

const (
	SignOutGlobal SignOutScope = "global" // revoke all sessions for the user
	SignOutLocal  SignOutScope = "local"  // revoke only the current session
	SignOutOthers SignOutScope = "others" // revoke all sessions except the current one
)
