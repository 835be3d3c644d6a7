// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"

	"blogapi/internal/apperror"
	"blogapi/internal/models"
	"blogapi/internal/store"
)

// Users manages login accounts. It owns password hashing.
type Users struct {
	users    UserRepository
	profiles ProfileRepository
	hasher   PasswordHasher
}

// NewUsers returns a Users service.
func NewUsers(users UserRepository, profiles ProfileRepository, hasher PasswordHasher) *Users {
	return &Users{users: users, profiles: profiles, hasher: hasher}
}

// FindAll returns every user.
func (s *Users) FindAll(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.NewInternalError("could not list users", err)
	}
	return users, nil
}

// FindOneByID returns a user with its profile attached when one exists.
func (s *Users) FindOneByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("could not load user", err)
	}
	if u == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", id), nil)
	}

	p, err := s.profiles.FindByUserID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("could not load user profile", err)
	}
	if p != nil {
		p.User = nil
		u.Profile = p
	}
	return u, nil
}

// FindByEmail returns the user registered with email, or nil.
func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.NewInternalError("could not look up user", err)
	}
	return u, nil
}

// Create hashes the password and stores a new user.
func (s *Users) Create(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.NewBadRequestError("could not create user", err)
	}

	u, err := s.users.Create(ctx, in.Email, hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperror.NewConflictError("email is already registered", err)
	}
	if err != nil {
		return nil, apperror.NewBadRequestError("could not create user", err)
	}
	return u, nil
}

// Update changes the email and/or password of a user. A new password is
// hashed before it is stored.
func (s *Users) Update(ctx context.Context, id int64, in models.UpdateUserInput) (*models.User, error) {
	var hash *string
	if in.Password != nil {
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperror.NewBadRequestError("could not update user", err)
		}
		hash = &h
	}

	u, err := s.users.Update(ctx, id, in.Email, hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperror.NewConflictError("email is already registered", err)
	}
	if err != nil {
		return nil, apperror.NewBadRequestError("could not update user", err)
	}
	if u == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", id), nil)
	}
	return u, nil
}

// Delete removes a user. A user that still owns a profile cannot be
// deleted.
func (s *Users) Delete(ctx context.Context, id int64) (string, error) {
	ok, err := s.users.Delete(ctx, id)
	if errors.Is(err, store.ErrForeignKey) {
		return "", apperror.NewConflictError("user still has a profile", err)
	}
	if err != nil {
		return "", apperror.NewInternalError("could not delete user", err)
	}
	if !ok {
		return "", apperror.NewNotFoundError(fmt.Sprintf("user %d not found", id), nil)
	}
	return fmt.Sprintf("user %d deleted", id), nil
}
