package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kingsocial/authkit/pkg/pg"
)

var (
	ErrNotFound      = errors.New("profiles: profile not found")
	ErrUsernameTaken = errors.New("profiles: username already taken")
	ErrProfileExists = errors.New("profiles: user already has a profile")
	ErrStorage       = errors.New("profiles: storage failure")
)

// Storage is the persistence interface the handlers consume.
type Storage interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Profile, error)
}

type pgStorage struct {
	pool *pgxpool.Pool
}

// NewStorage creates a PostgreSQL-backed profile storage.
func NewStorage(pool *pgxpool.Pool) Storage {
	return &pgStorage{pool: pool}
}

const profileColumns = "id, user_id, display_name, username, bio, avatar_url, city, created_at, updated_at"

func (s *pgStorage) Create(ctx context.Context, profile *Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, user_id, display_name, username, bio, avatar_url, city, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		profile.ID, profile.UserID, profile.DisplayName, profile.Username,
		profile.Bio, profile.AvatarURL, profile.City, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKey(err) {
			if pg.ConstraintName(err) == "profiles_user_id_key" {
				return ErrProfileExists
			}
			return ErrUsernameTaken
		}
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *pgStorage) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.getOne(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
}

func (s *pgStorage) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	return s.getOne(ctx, "SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID)
}

func (s *pgStorage) getOne(ctx context.Context, query string, arg any) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Username,
		&p.Bio, &p.AvatarURL, &p.City, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}
	return &p, nil
}

func (s *pgStorage) Update(ctx context.Context, profile *Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles
		 SET display_name = $1, username = $2, bio = $3, avatar_url = $4, city = $5, updated_at = $6
		 WHERE id = $7`,
		profile.DisplayName, profile.Username, profile.Bio,
		profile.AvatarURL, profile.City, profile.UpdatedAt, profile.ID,
	)
	if err != nil {
		if pg.IsDuplicateKey(err) {
			return ErrUsernameTaken
		}
		return errors.Join(ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStorage) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStorage) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+profileColumns+" FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	defer rows.Close()

	var result []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.DisplayName, &p.Username,
			&p.Bio, &p.AvatarURL, &p.City, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return result, nil
}

var _ Storage = (*pgStorage)(nil)
