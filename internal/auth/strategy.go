// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"blogapi/internal/apperror"
	"blogapi/internal/models"
)

// Strategy authenticates a request. Failures are apperror values, normally
// of kind AuthError.
type Strategy interface {
	Authenticate(r *http.Request) (*Principal, error)
}

// CredentialValidator checks an email and password pair.
type CredentialValidator interface {
	ValidateUser(ctx context.Context, email, password string) (*models.User, error)
}

// maxLoginBody bounds the credentials body read by LocalStrategy.
const maxLoginBody = 64 << 10

// LocalStrategy authenticates with an email and password JSON body.
type LocalStrategy struct {
	validator CredentialValidator
}

// NewLocalStrategy returns a LocalStrategy backed by v.
func NewLocalStrategy(v CredentialValidator) *LocalStrategy {
	return &LocalStrategy{validator: v}
}

// Authenticate decodes {email, password} and validates them.
func (s *LocalStrategy) Authenticate(r *http.Request) (*Principal, error) {
	var in models.LoginInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&in); err != nil {
		return nil, apperror.NewAuthError("email and password are required", err)
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, apperror.NewAuthError("email and password are required", nil)
	}

	user, err := s.validator.ValidateUser(r.Context(), in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	p := &Principal{User: user}
	if id, ok := user.ProfileID(); ok {
		p.ProfileID = id
	}
	return p, nil
}

// BearerStrategy authenticates with an "Authorization: Bearer <token>" header.
type BearerStrategy struct {
	tokens *TokenIssuer
}

// NewBearerStrategy returns a BearerStrategy verifying tokens with t.
func NewBearerStrategy(t *TokenIssuer) *BearerStrategy {
	return &BearerStrategy{tokens: t}
}

// Authenticate verifies the bearer token and returns {sub: profileID}.
func (s *BearerStrategy) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, apperror.NewAuthError("missing bearer token", nil)
	}

	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, apperror.NewAuthError("invalid or expired token", err)
	}
	profileID, err := claims.ProfileID()
	if err != nil {
		return nil, apperror.NewAuthError("invalid or expired token", err)
	}
	return &Principal{ProfileID: profileID}, nil
}
