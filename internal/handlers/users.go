// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"blogapi/internal/apperror"
	"blogapi/internal/auth"
	"blogapi/internal/models"
)

// UserService is the user management the handlers need.
type UserService interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindOneByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, in models.CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in models.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// ProfileService is the profile management the handlers need.
type ProfileService interface {
	FindByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	Create(ctx context.Context, in models.CreateProfileInput) (*models.Profile, error)
	Update(ctx context.Context, id int64, in models.UpdateProfileInput) (*models.Profile, error)
}

// ProfilePostLister lists the posts of one profile.
type ProfilePostLister interface {
	FindAllByProfile(ctx context.Context, profileID int64) ([]models.PostSummary, error)
}

// Users serves /users and its profile sub-resource. Every {id} under
// /users is a user id.
type Users struct {
	users    UserService
	profiles ProfileService
	posts    ProfilePostLister
}

// NewUsers creates the Users handler group.
func NewUsers(users UserService, profiles ProfileService, posts ProfilePostLister) *Users {
	return &Users{users: users, profiles: profiles, posts: posts}
}

func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.FindOneByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CreateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// CreateProfile answers POST /users/{id}/profile.
func (h *Users) CreateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.CreateProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.UserID = id
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.profiles.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProfile answers GET /users/{id}/profile.
func (h *Users) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.profiles.FindByUserID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile answers PUT /users/{id}/profile. Only the owner of the
// profile may change it.
func (h *Users) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, apperror.NewAuthError("missing bearer token", nil))
		return
	}

	current, err := h.profiles.FindByUserID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if current.ID != principal.ProfileID {
		writeError(w, r, apperror.NewForbiddenError("you can only update your own profile", nil))
		return
	}

	var in models.UpdateProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.profiles.Update(r.Context(), current.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ProfilePosts answers GET /users/{id}/profile/posts.
func (h *Users) ProfilePosts(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.profiles.FindByUserID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	posts, err := h.posts.FindAllByProfile(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}
