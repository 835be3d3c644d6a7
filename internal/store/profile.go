package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"blogapi/internal/models"
)

// ProfileStore manages author profiles.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `id, name, lastname, email, avatar, user_id, created_at, updated_at`

// profileWithUserColumns selects a profile and its owning user in one row
// from "profiles p JOIN users u".
const profileWithUserColumns = `p.id, p.name, p.lastname, p.email, p.avatar, p.user_id, p.created_at, p.updated_at,
	u.id, u.email, u.password_hash, u.created_at, u.updated_at`

const profileWithUserSelect = `SELECT ` + profileWithUserColumns + `
	FROM profiles p
	JOIN users u ON u.id = p.user_id`

func scanProfile(scanner interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := scanner.Scan(
		&p.ID, &p.Name, &p.LastName, &p.Email, &p.Avatar,
		&p.UserID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProfileWithUser(scanner interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	var u models.User
	err := scanner.Scan(
		&p.ID, &p.Name, &p.LastName, &p.Email, &p.Avatar,
		&p.UserID, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.User = &u
	return &p, nil
}

// FindByID returns a profile with its owning user. Returns nil if not found.
func (s *ProfileStore) FindByID(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := scanProfileWithUser(s.db.QueryRowContext(ctx, profileWithUserSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return p, nil
}

// FindByUserID returns the profile owned by a user, with the user attached.
// Returns nil if the user has no profile.
func (s *ProfileStore) FindByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := scanProfileWithUser(s.db.QueryRowContext(ctx, profileWithUserSelect+` WHERE p.user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by user: %w", err)
	}
	return p, nil
}

// Exists reports whether a profile with the given id exists.
func (s *ProfileStore) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, "profiles", id)
}

// Create inserts a profile for in.UserID. A second profile for the same
// user or a reused email fails with ErrDuplicate.
func (s *ProfileStore) Create(ctx context.Context, in models.CreateProfileInput) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (name, lastname, email, avatar, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns,
		in.Name, in.LastName, in.Email, in.Avatar, in.UserID,
	))
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", translate(err))
	}
	return p, nil
}

// Update applies the non-nil fields of in. Returns nil if not found.
func (s *ProfileStore) Update(ctx context.Context, id int64, in models.UpdateProfileInput) (*models.Profile, error) {
	b := psql.Update("profiles").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + profileColumns)
	if in.Name != nil {
		b = b.Set("name", *in.Name)
	}
	if in.LastName != nil {
		b = b.Set("lastname", *in.LastName)
	}
	if in.Email != nil {
		b = b.Set("email", *in.Email)
	}
	if in.Avatar != nil {
		b = b.Set("avatar", *in.Avatar)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile update: %w", err)
	}

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", translate(err))
	}
	return p, nil
}
