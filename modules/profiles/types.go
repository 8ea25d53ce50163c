package profiles

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is a member's public profile, owned by exactly one auth user.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Username    string    `json:"username"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	City        string    `json:"city,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileInput is the client-writable subset of a profile. The same fixed
// schema validates creates and updates.
type ProfileInput struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	City        string `json:"city"`
}

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// Validate checks the input against the fixed schema and returns per-field
// messages. An empty map means the input is valid.
func (in ProfileInput) Validate() map[string]string {
	problems := make(map[string]string)

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		problems["display_name"] = "display name is required"
	} else if len(name) > 80 {
		problems["display_name"] = "display name must be at most 80 characters"
	}

	if !usernameRegex.MatchString(in.Username) {
		problems["username"] = "username must be 3-30 characters of a-z, 0-9 or _"
	}

	if len(in.Bio) > 500 {
		problems["bio"] = "bio must be at most 500 characters"
	}

	if in.AvatarURL != "" {
		if len(in.AvatarURL) > 2048 {
			problems["avatar_url"] = "avatar URL is too long"
		} else if !strings.HasPrefix(in.AvatarURL, "https://") && !strings.HasPrefix(in.AvatarURL, "http://") {
			problems["avatar_url"] = "avatar URL must be an http(s) URL"
		}
	}

	if len(in.City) > 120 {
		problems["city"] = "city must be at most 120 characters"
	}

	return problems
}
