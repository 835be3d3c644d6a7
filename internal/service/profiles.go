package service

import (
	"context"
	"errors"
	"fmt"

	"blogapi/internal/apperror"
	"blogapi/internal/models"
	"blogapi/internal/store"
)

// UserFinder resolves a user by id. Users satisfies it.
type UserFinder interface {
	FindOneByID(ctx context.Context, id int64) (*models.User, error)
}

// Profiles manages author profiles, at most one per user.
type Profiles struct {
	profiles ProfileRepository
	users    UserFinder
}

// NewProfiles returns a Profiles service.
func NewProfiles(profiles ProfileRepository, users UserFinder) *Profiles {
	return &Profiles{profiles: profiles, users: users}
}

// FindOneByID returns a profile with its owning user.
func (s *Profiles) FindOneByID(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NewBadRequestError("could not load profile", err)
	}
	if p == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("profile %d not found", id), nil)
	}
	return p, nil
}

// FindByUserID returns the profile owned by a user.
func (s *Profiles) FindByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	if _, err := s.users.FindOneByID(ctx, userID); err != nil {
		return nil, apperror.Wrap(err, "find profile")
	}
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.NewBadRequestError("could not load profile", err)
	}
	if p == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d has no profile", userID), nil)
	}
	return p, nil
}

// JustFindID checks that a profile exists without loading it.
func (s *Profiles) JustFindID(ctx context.Context, id int64) (int64, error) {
	ok, err := s.profiles.Exists(ctx, id)
	if err != nil {
		return 0, apperror.NewInternalError("could not look up profile", err)
	}
	if !ok {
		return 0, apperror.NewNotFoundError(fmt.Sprintf("profile %d not found", id), nil)
	}
	return id, nil
}

// Create stores a profile for in.UserID. The user must exist and must not
// already own a profile; the profile email must be unused.
func (s *Profiles) Create(ctx context.Context, in models.CreateProfileInput) (*models.Profile, error) {
	if _, err := s.users.FindOneByID(ctx, in.UserID); err != nil {
		return nil, apperror.Wrap(err, "create profile")
	}

	p, err := s.profiles.Create(ctx, in)
	if err != nil {
		return nil, profileWriteError("could not create profile", in.UserID, err)
	}
	return p, nil
}

// Update applies a partial change to a profile.
func (s *Profiles) Update(ctx context.Context, id int64, in models.UpdateProfileInput) (*models.Profile, error) {
	p, err := s.profiles.Update(ctx, id, in)
	if err != nil {
		return nil, profileWriteError("could not update profile", 0, err)
	}
	if p == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("profile %d not found", id), nil)
	}
	return p, nil
}

func profileWriteError(msg string, userID int64, err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicate) && store.ConstraintName(err) == store.ConstraintProfileUserID:
		return apperror.NewConflictError("user already has a profile", err)
	case errors.Is(err, store.ErrDuplicate):
		return apperror.NewConflictError("profile email is already in use", err)
	case errors.Is(err, store.ErrForeignKey):
		return apperror.NewNotFoundError(fmt.Sprintf("user %d not found", userID), err)
	default:
		return apperror.NewBadRequestError(msg, err)
	}
}
