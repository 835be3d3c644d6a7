package service

import (
	"context"

	"blogapi/internal/apperror"
	"blogapi/internal/models"
)

// UserLookup is what Auth needs from Users.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindOneByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth checks credentials and issues bearer tokens.
type Auth struct {
	users  UserLookup
	hasher PasswordHasher
	tokens TokenSigner
}

// NewAuth returns an Auth service.
func NewAuth(users UserLookup, hasher PasswordHasher, tokens TokenSigner) *Auth {
	return &Auth{users: users, hasher: hasher, tokens: tokens}
}

// ValidateUser returns the full user when password matches the account
// registered with email. Unknown email and wrong password are both
// AuthError; other failures become BadRequest.
func (s *Auth) ValidateUser(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, rewrapAuth(err)
	}
	if u == nil || !s.hasher.Compare(u.PasswordHash, password) {
		return nil, apperror.NewAuthError("invalid email or password", nil)
	}

	full, err := s.users.FindOneByID(ctx, u.ID)
	if err != nil {
		return nil, rewrapAuth(err)
	}
	return full, nil
}

// GenerateToken signs a token whose subject is the user's profile id.
// Users without a profile cannot obtain a token.
func (s *Auth) GenerateToken(user *models.User) (string, error) {
	profileID, ok := user.ProfileID()
	if !ok {
		return "", apperror.NewForbiddenError("create a profile before logging in", nil)
	}
	token, err := s.tokens.Issue(profileID)
	if err != nil {
		return "", apperror.NewInternalError("could not issue token", err)
	}
	return token, nil
}

func rewrapAuth(err error) error {
	if apperror.IsAuth(err) {
		return err
	}
	return apperror.NewBadRequestError("could not validate credentials", err)
}
