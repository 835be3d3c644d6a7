// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"blogapi/internal/models"
)

// CategoryService is the category management the handlers need.
type CategoryService interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindOneByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, in models.CreateCategoryInput) (*models.Category, error)
	Update(ctx context.Context, id int64, in models.UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// CategoryPostLister lists the posts filed under a category.
type CategoryPostLister interface {
	FindByCategoryID(ctx context.Context, categoryID int64) ([]models.Post, error)
}

// Categories serves /categories.
type Categories struct {
	categories CategoryService
	posts      CategoryPostLister
}

// NewCategories creates the Categories handler group.
func NewCategories(categories CategoryService, posts CategoryPostLister) *Categories {
	return &Categories{categories: categories, posts: posts}
}

func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.categories.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.categories.FindOneByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CreateCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.categories.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.UpdateCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.categories.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := h.categories.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// Posts answers GET /categories/{id}/posts.
func (h *Categories) Posts(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	posts, err := h.posts.FindByCategoryID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}
