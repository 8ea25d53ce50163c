package authstate

import (
	"time"

	"github.com/kingsocial/authkit/pkg/transport"
)

// Pure translation from raw transport payloads to the stable types of this
// package. Mapping tolerates partially-populated and nil inputs: a nil raw
// value maps to nil, never a panic. No function here performs I/O.

// MapUser translates a raw user payload. Nil in, nil out.
func MapUser(raw *transport.RawUser) *User {
	if raw == nil {
		return nil
	}

	user := &User{
		ID:             raw.ID,
		Email:          raw.Email,
		EmailConfirmed: raw.EmailConfirmedAt != "",
		Phone:          raw.Phone,
		PhoneConfirmed: raw.PhoneConfirmedAt != "",
		CreatedAt:      parseTime(raw.CreatedAt),
		LastSignInAt:   parseTime(raw.LastSignInAt),
		AppMetadata:    mapAppMetadata(raw.AppMetadata),
		UserMetadata:   mapUserMetadata(raw.UserMetadata),
	}
	for _, id := range raw.Identities {
		user.Identities = append(user.Identities, MapIdentity(id))
	}
	for _, f := range raw.Factors {
		user.Factors = append(user.Factors, MapFactor(f))
	}
	return user
}

// MapSession translates a raw session payload. Nil in, nil out. A missing
// absolute expiry is left at zero; the transport derives it at adoption time.
func MapSession(raw *transport.RawSession) *Session {
	if raw == nil {
		return nil
	}
	return &Session{
		AccessToken:  raw.AccessToken,
		RefreshToken: raw.RefreshToken,
		TokenType:    raw.TokenType,
		ExpiresIn:    raw.ExpiresIn,
		ExpiresAt:    raw.ExpiresAt,
	}
}

// MapIdentity translates a linked-identity record.
func MapIdentity(raw transport.RawIdentity) Identity {
	return Identity{
		ID:           raw.ID,
		UserID:       raw.UserID,
		Provider:     raw.Provider,
		CreatedAt:    parseTime(raw.CreatedAt),
		LastSignInAt: parseTime(raw.LastSignInAt),
	}
}

// MapFactor translates an MFA factor record. Unknown factor types and
// statuses pass through untyped rather than failing, for forward
// compatibility with new factor kinds.
func MapFactor(raw transport.RawFactor) Factor {
	return Factor{
		ID:           raw.ID,
		Type:         FactorType(raw.FactorType),
		Status:       FactorStatus(raw.Status),
		FriendlyName: raw.FriendlyName,
		CreatedAt:    parseTime(raw.CreatedAt),
		UpdatedAt:    parseTime(raw.UpdatedAt),
	}
}

// MapFactors translates a factor list. Nil in, nil out.
func MapFactors(raws []transport.RawFactor) []Factor {
	if raws == nil {
		return nil
	}
	factors := make([]Factor, 0, len(raws))
	for _, raw := range raws {
		factors = append(factors, MapFactor(raw))
	}
	return factors
}

func mapAppMetadata(raw map[string]any) AppMetadata {
	meta := AppMetadata{}
	if raw == nil {
		return meta
	}
	if v, ok := raw["provider"].(string); ok {
		meta.Provider = v
	}
	if vs, ok := raw["providers"].([]any); ok {
		for _, v := range vs {
			if s, ok := v.(string); ok {
				meta.Providers = append(meta.Providers, s)
			}
		}
	}
	if v, ok := raw["role"].(string); ok {
		meta.Role = Role(v)
	}
	return meta
}

func mapUserMetadata(raw map[string]any) UserMetadata {
	meta := UserMetadata{}
	if raw == nil {
		return meta
	}
	if v, ok := raw["display_name"].(string); ok {
		meta.DisplayName = v
	}
	if v, ok := raw["username"].(string); ok {
		meta.Username = v
	}
	if v, ok := raw["avatar_url"].(string); ok {
		meta.AvatarURL = v
	}
	return meta
}

// parseTime parses the service's RFC 3339 timestamps, returning the zero time
// for empty or malformed values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999Z07:00", s); err == nil {
		return t
	}
	return time.Time{}
}
