package handlers

import (
	"context"
	"net/http"

	"blogapi/internal/apperror"
	"blogapi/internal/auth"
	"blogapi/internal/models"
)

// TokenGenerator issues the access token returned by a login.
type TokenGenerator interface {
	GenerateToken(user *models.User) (string, error)
}

// ProfileFinder loads a profile by id.
type ProfileFinder interface {
	FindOneByID(ctx context.Context, id int64) (*models.Profile, error)
}

// Auth serves the login and current-principal endpoints.
type Auth struct {
	tokens   TokenGenerator
	profiles ProfileFinder
}

// NewAuth creates the Auth handler group.
func NewAuth(tokens TokenGenerator, profiles ProfileFinder) *Auth {
	return &Auth{tokens: tokens, profiles: profiles}
}

type loginResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Login answers POST /auth/login. The local strategy has already checked
// the credentials and stored the user in the principal.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok || p.User == nil {
		writeError(w, r, apperror.NewAuthError("invalid email or password", nil))
		return
	}

	token, err := h.tokens.GenerateToken(p.User)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: p.User, AccessToken: token})
}

// Me answers GET /auth/me with the caller's profile.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, apperror.NewAuthError("missing bearer token", nil))
		return
	}
	profile, err := h.profiles.FindOneByID(r.Context(), p.ProfileID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
