// Package redisstore persists the auth transport's current session in Redis,
// sharing session custody across processes of the same deployment.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kingsocial/authkit/pkg/transport"
)

var (
	// ErrMissingKey is returned when the store is constructed without a key.
	ErrMissingKey = errors.New("redisstore: session key is required")
	// ErrStoreFailure wraps Redis command failures.
	ErrStoreFailure = errors.New("redisstore: operation failed")
)

// Store implements transport.SessionStore on top of Redis. Each browser
// context (or device) gets its own key; the caller decides the keying scheme.
type Store struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// Option configures a Store during construction.
type Option func(*Store)

// WithTTL bounds how long a persisted session survives without being
// re-saved. Zero means no bound.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a Redis-backed session store under the given key.
func New(client redis.UniversalClient, key string, opts ...Option) (*Store, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	s := &Store{client: client, key: key}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns the stored session, or (nil, nil) when none exists.
func (s *Store) Load(ctx context.Context) (*transport.RawSession, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	var session transport.RawSession
	if err := json.Unmarshal(raw, &session); err != nil {
		// Corrupt payload is unrecoverable; treat as signed out.
		_ = s.client.Del(ctx, s.key).Err()
		return nil, nil
	}
	return &session, nil
}

// Save persists the session, refreshing the TTL if one is configured.
func (s *Store) Save(ctx context.Context, session *transport.RawSession) error {
	if session == nil {
		return s.Clear(ctx)
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// Clear removes the stored session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

var _ transport.SessionStore = (*Store)(nil)
