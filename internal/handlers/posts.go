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

// PostService is the post management the handlers need.
type PostService interface {
	FindAll(ctx context.Context) ([]models.Post, error)
	FindOneByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, in models.CreatePostInput, authorProfileID int64) (*models.Post, error)
	Update(ctx context.Context, id int64, in models.UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// Posts serves /post. All routes require a bearer token.
type Posts struct {
	posts PostService
}

// NewPosts creates the Posts handler group.
func NewPosts(posts PostService) *Posts {
	return &Posts{posts: posts}
}

func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.posts.FindOneByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create stores a post authored by the caller's profile.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok || principal.ProfileID == 0 {
		writeError(w, r, apperror.NewAuthError("missing bearer token", nil))
		return
	}

	var in models.CreatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCategoryIDs(in.CategoryIDs); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.posts.Create(r.Context(), in, principal.ProfileID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.UpdatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.CategoryIDs != nil {
		if err := validateCategoryIDs(*in.CategoryIDs); err != nil {
			writeError(w, r, err)
			return
		}
	}

	p, err := h.posts.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.posts.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
