package profiles_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsocial/authkit/modules/profiles"
	"github.com/kingsocial/authkit/pkg/authstate"
)

// memStorage is an in-memory Storage for handler tests.
type memStorage struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*profiles.Profile
	failWith error
}

func newMemStorage() *memStorage {
	return &memStorage{byID: make(map[uuid.UUID]*profiles.Profile)}
}

func (s *memStorage) Create(ctx context.Context, profile *profiles.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	for _, p := range s.byID {
		if p.UserID == profile.UserID {
			return profiles.ErrProfileExists
		}
		if p.Username == profile.Username {
			return profiles.ErrUsernameTaken
		}
	}
	cp := *profile
	s.byID[profile.ID] = &cp
	return nil
}

func (s *memStorage) GetByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStorage) GetByUserID(ctx context.Context, userID string) (*profiles.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, profiles.ErrNotFound
}

func (s *memStorage) Update(ctx context.Context, profile *profiles.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[profile.ID]; !ok {
		return profiles.ErrNotFound
	}
	cp := *profile
	s.byID[profile.ID] = &cp
	return nil
}

func (s *memStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return profiles.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *memStorage) List(ctx context.Context, limit, offset int) ([]profiles.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []profiles.Profile
	for _, p := range s.byID {
		result = append(result, *p)
	}
	return result, nil
}

var _ profiles.Storage = (*memStorage)(nil)

// stateFor serves a fixed authenticated state for the given user.
type stateFor struct {
	user *authstate.User
}

func (s stateFor) State() authstate.State {
	if s.user == nil {
		return authstate.State{Status: authstate.StatusUnauthenticated}
	}
	return authstate.State{
		Status:  authstate.StatusAuthenticated,
		User:    s.user,
		Session: &authstate.Session{AccessToken: "access-1"},
	}
}

func seekerUser(id string) *authstate.User {
	return &authstate.User{
		ID:          id,
		Email:       id + "@example.com",
		AppMetadata: authstate.AppMetadata{Role: authstate.RoleSeeker},
	}
}

func seedProfile(t *testing.T, storage *memStorage, userID, username string) *profiles.Profile {
	t.Helper()
	p := &profiles.Profile{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: "Someone",
		Username:    username,
	}
	require.NoError(t, storage.Create(context.Background(), p))
	return p
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestProfilesRouter(t *testing.T) {
	t.Parallel()

	validBody := `{"display_name":"Alex K","username":"alex_k","bio":"hi","city":"Berlin"}`

	t.Run("unauthenticated requests are redirected to sign-in", func(t *testing.T) {
		t.Parallel()

		router := profiles.NewRouter(newMemStorage(), stateFor{})
		rec, _ := doJSON(t, router, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/signin")
	})

	t.Run("create returns the profile with 201", func(t *testing.T) {
		t.Parallel()

		router := profiles.NewRouter(newMemStorage(), stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodPost, "/", validBody)

		require.Equal(t, http.StatusCreated, rec.Code)
		profile, ok := body["profile"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alex_k", profile["username"])
		assert.Equal(t, "user-1", profile["user_id"])
	})

	t.Run("create rejects invalid input with field messages", func(t *testing.T) {
		t.Parallel()

		router := profiles.NewRouter(newMemStorage(), stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodPost, "/", `{"display_name":"","username":"A!"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_failed", body["code"])
		errObj := body["error"].(map[string]any)
		fields := errObj["fields"].(map[string]any)
		assert.Contains(t, fields, "display_name")
		assert.Contains(t, fields, "username")
	})

	t.Run("create rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		router := profiles.NewRouter(newMemStorage(), stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodPost, "/", `{not json`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", body["code"])
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		seedProfile(t, storage, "user-0", "alex_k")

		router := profiles.NewRouter(storage, stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodPost, "/", validBody)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "username_taken", body["code"])
	})

	t.Run("second profile for the same user conflicts", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		seedProfile(t, storage, "user-1", "first_one")

		router := profiles.NewRouter(storage, stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodPost, "/", validBody)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "profile_exists", body["code"])
	})

	t.Run("get by id and me", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		p := seedProfile(t, storage, "user-1", "alex_k")
		router := profiles.NewRouter(storage, stateFor{seekerUser("user-1")})

		rec, body := doJSON(t, router, http.MethodGet, "/"+p.ID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alex_k", body["profile"].(map[string]any)["username"])

		rec, body = doJSON(t, router, http.MethodGet, "/me", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", body["profile"].(map[string]any)["user_id"])
	})

	t.Run("unknown profile is 404, bad id is 400", func(t *testing.T) {
		t.Parallel()

		router := profiles.NewRouter(newMemStorage(), stateFor{seekerUser("user-1")})

		rec, body := doJSON(t, router, http.MethodGet, "/"+uuid.NewString(), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", body["code"])

		rec, body = doJSON(t, router, http.MethodGet, "/not-a-uuid", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_id", body["code"])
	})

	t.Run("owner can update, stranger cannot", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		p := seedProfile(t, storage, "user-1", "alex_k")

		owner := profiles.NewRouter(storage, stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, owner, http.MethodPut, "/"+p.ID.String(),
			`{"display_name":"Renamed","username":"alex_k"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Renamed", body["profile"].(map[string]any)["display_name"])

		stranger := profiles.NewRouter(storage, stateFor{seekerUser("user-2")})
		rec, body = doJSON(t, stranger, http.MethodPut, "/"+p.ID.String(),
			`{"display_name":"Hijacked","username":"alex_k"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "forbidden", body["code"])
	})

	t.Run("moderator can delete another user's profile", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		p := seedProfile(t, storage, "user-1", "alex_k")

		moderator := &authstate.User{
			ID:          "mod-1",
			AppMetadata: authstate.AppMetadata{Role: authstate.RoleModerator},
		}
		router := profiles.NewRouter(storage, stateFor{moderator})

		rec, _ := doJSON(t, router, http.MethodDelete, "/"+p.ID.String(), "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := storage.GetByID(context.Background(), p.ID)
		assert.ErrorIs(t, err, profiles.ErrNotFound)
	})

	t.Run("list wraps profiles with meta", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		seedProfile(t, storage, "user-1", "alex_k")
		seedProfile(t, storage, "user-2", "sam_w")

		router := profiles.NewRouter(storage, stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodGet, "/?limit=10", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["profiles"], 2)
		meta := body["meta"].(map[string]any)
		assert.EqualValues(t, 2, meta["count"])
	})

	t.Run("storage failure is a 500 with a stable code", func(t *testing.T) {
		t.Parallel()

		storage := newMemStorage()
		storage.failWith = profiles.ErrStorage

		router := profiles.NewRouter(storage, stateFor{seekerUser("user-1")})
		rec, body := doJSON(t, router, http.MethodPost, "/", validBody)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal_error", body["code"])
	})
}
