package authstate

import "time"

// Status is the authentication status of the application.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
	StatusError           Status = "error"
)

// Role is a server-assigned account role. It arrives in app metadata and is
// never client-writable.
type Role string

const (
	RoleSeeker    Role = "seeker"
	RoleProvider  Role = "provider"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// FactorType identifies the kind of an MFA factor.
type FactorType string

const (
	FactorTOTP  FactorType = "totp"
	FactorPhone FactorType = "phone"
)

// FactorStatus is the verification state of an MFA factor.
type FactorStatus string

const (
	FactorVerified   FactorStatus = "verified"
	FactorUnverified FactorStatus = "unverified"
)

// AppMetadata holds server-controlled account attributes.
type AppMetadata struct {
	Provider  string
	Providers []string
	Role      Role
}

// UserMetadata holds client-writable profile hints.
type UserMetadata struct {
	DisplayName string
	Username    string
	AvatarURL   string
}

// Identity is a linked external-identity record, one per federated provider.
type Identity struct {
	ID           string
	UserID       string
	Provider     string
	CreatedAt    time.Time
	LastSignInAt time.Time
}

// Factor is an enrolled MFA factor.
type Factor struct {
	ID           string
	Type         FactorType
	Status       FactorStatus
	FriendlyName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is the authenticated principal. Values are always derived from a
// remote payload by the mapper, never hand-constructed, and are immutable per
// update: every state transition produces a new value.
type User struct {
	ID             string
	Email          string
	EmailConfirmed bool
	Phone          string
	PhoneConfirmed bool
	CreatedAt      time.Time
	LastSignInAt   time.Time
	AppMetadata    AppMetadata
	UserMetadata   UserMetadata
	Identities     []Identity
	Factors        []Factor
}

// VerifiedFactors returns the user's verified MFA factors. These are the
// factors that gate sign-in.
func (u *User) VerifiedFactors() []Factor {
	if u == nil {
		return nil
	}
	var verified []Factor
	for _, f := range u.Factors {
		if f.Status == FactorVerified {
			verified = append(verified, f)
		}
	}
	return verified
}

// Session is a live credential grant. Exactly one session is current per
// browser context; custody belongs to the session manager.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // seconds
	ExpiresAt    int64 // epoch seconds
}

// ExpiresTime returns the expiry as a time.Time, zero when unknown.
func (s *Session) ExpiresTime() time.Time {
	if s == nil || s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0)
}

// State is the single source of truth for authentication. User and Session
// are both non-nil iff Status is StatusAuthenticated.
type State struct {
	Status  Status
	User    *User
	Session *Session
	Err     *Error
}

// Authenticated reports whether the state carries a signed-in user.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
