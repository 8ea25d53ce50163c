package authstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsocial/authkit/pkg/authstate"
	"github.com/kingsocial/authkit/pkg/transport"
)

func TestMapUser(t *testing.T) {
	t.Parallel()

	t.Run("nil in, nil out", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, authstate.MapUser(nil))
	})

	t.Run("maps a full payload", func(t *testing.T) {
		t.Parallel()

		raw := &transport.RawUser{
			ID:               "user-1",
			Email:            "a@example.com",
			EmailConfirmedAt: "2025-03-01T10:00:00Z",
			Phone:            "+15550001111",
			CreatedAt:        "2025-01-15T08:30:00Z",
			LastSignInAt:     "2025-03-02T09:00:00Z",
			AppMetadata: map[string]any{
				"provider":  "email",
				"providers": []any{"email", "google"},
				"role":      "provider",
			},
			UserMetadata: map[string]any{
				"display_name": "Alex",
				"username":     "alex_k",
				"avatar_url":   "https://cdn.example.com/a.png",
			},
			Identities: []transport.RawIdentity{
				{ID: "ident-1", UserID: "user-1", Provider: "google", CreatedAt: "2025-02-01T00:00:00Z"},
			},
			Factors: []transport.RawFactor{
				{ID: "factor-1", FactorType: "totp", Status: "verified"},
				{ID: "factor-2", FactorType: "phone", Status: "unverified"},
			},
		}

		user := authstate.MapUser(raw)
		require.NotNil(t, user)
		assert.Equal(t, "user-1", user.ID)
		assert.True(t, user.EmailConfirmed)
		assert.False(t, user.PhoneConfirmed)
		assert.Equal(t, time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC), user.CreatedAt)

		assert.Equal(t, "email", user.AppMetadata.Provider)
		assert.Equal(t, []string{"email", "google"}, user.AppMetadata.Providers)
		assert.Equal(t, authstate.RoleProvider, user.AppMetadata.Role)

		assert.Equal(t, "Alex", user.UserMetadata.DisplayName)
		assert.Equal(t, "alex_k", user.UserMetadata.Username)

		require.Len(t, user.Identities, 1)
		assert.Equal(t, "google", user.Identities[0].Provider)

		require.Len(t, user.Factors, 2)
		verified := user.VerifiedFactors()
		require.Len(t, verified, 1)
		assert.Equal(t, "factor-1", verified[0].ID)
	})

	t.Run("tolerates empty metadata and malformed timestamps", func(t *testing.T) {
		t.Parallel()

		user := authstate.MapUser(&transport.RawUser{
			ID:        "user-2",
			CreatedAt: "not-a-timestamp",
		})
		require.NotNil(t, user)
		assert.True(t, user.CreatedAt.IsZero())
		assert.Empty(t, user.AppMetadata.Provider)
		assert.Empty(t, user.UserMetadata.DisplayName)
		assert.Nil(t, user.Identities)
		assert.Nil(t, user.Factors)
	})

	t.Run("ignores unexpected metadata value types", func(t *testing.T) {
		t.Parallel()

		user := authstate.MapUser(&transport.RawUser{
			ID: "user-3",
			AppMetadata: map[string]any{
				"provider":  42,
				"providers": "not-a-list",
				"role":      map[string]any{},
			},
			UserMetadata: map[string]any{"display_name": 1},
		})
		require.NotNil(t, user)
		assert.Empty(t, user.AppMetadata.Provider)
		assert.Nil(t, user.AppMetadata.Providers)
		assert.Empty(t, user.AppMetadata.Role)
		assert.Empty(t, user.UserMetadata.DisplayName)
	})

	t.Run("mapping does not mutate its input", func(t *testing.T) {
		t.Parallel()

		raw := &transport.RawUser{ID: "user-4", Email: "b@example.com"}
		before := *raw
		_ = authstate.MapUser(raw)
		assert.Equal(t, before, *raw)
	})
}

func TestMapSession(t *testing.T) {
	t.Parallel()

	t.Run("nil in, nil out", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, authstate.MapSession(nil))
	})

	t.Run("maps token fields", func(t *testing.T) {
		t.Parallel()

		session := authstate.MapSession(&transport.RawSession{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
			ExpiresIn:    3600,
			ExpiresAt:    1750000000,
		})
		require.NotNil(t, session)
		assert.Equal(t, "access-1", session.AccessToken)
		assert.Equal(t, int64(1750000000), session.ExpiresAt)
		assert.Equal(t, time.Unix(1750000000, 0), session.ExpiresTime())
	})

	t.Run("missing expiry stays zero", func(t *testing.T) {
		t.Parallel()

		session := authstate.MapSession(&transport.RawSession{AccessToken: "a"})
		assert.Zero(t, session.ExpiresAt)
		assert.True(t, session.ExpiresTime().IsZero())
	})
}

func TestMapFactors(t *testing.T) {
	t.Parallel()

	t.Run("nil in, nil out", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, authstate.MapFactors(nil))
	})

	t.Run("unknown factor types pass through", func(t *testing.T) {
		t.Parallel()

		factors := authstate.MapFactors([]transport.RawFactor{
			{ID: "f1", FactorType: "webauthn", Status: "verified"},
		})
		require.Len(t, factors, 1)
		assert.Equal(t, authstate.FactorType("webauthn"), factors[0].Type)
	})
}
