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

// Categories manages categories. Names are unique; the unique constraint
// is the final word when two writers race past the name check.
type Categories struct {
	categories CategoryRepository
	cache      CategoryCache
}

// NewCategories returns a Categories service. cache may be nil.
func NewCategories(categories CategoryRepository, cache CategoryCache) *Categories {
	if cache == nil {
		cache = noCache{}
	}
	return &Categories{categories: categories, cache: cache}
}

// FindAll returns every category, from the cache when it is warm.
func (s *Categories) FindAll(ctx context.Context) ([]models.Category, error) {
	cached, gen, ok := s.cache.Get(ctx)
	if ok {
		return cached, nil
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperror.NewInternalError("could not list categories", err)
	}
	s.cache.Set(ctx, gen, list)
	return list, nil
}

// FindOneByID returns a category.
func (s *Categories) FindOneByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("could not load category", err)
	}
	if c == nil {
		return nil, categoryNotFound(id)
	}
	return c, nil
}

// JustFindID checks that a category exists without loading it.
func (s *Categories) JustFindID(ctx context.Context, id int64) (int64, error) {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return 0, apperror.NewInternalError("could not look up category", err)
	}
	if !ok {
		return 0, categoryNotFound(id)
	}
	return id, nil
}

// FindByIDs returns the categories among ids that exist. A nil or empty
// ids yields an empty result.
func (s *Categories) FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	found, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.NewInternalError("could not look up categories", err)
	}
	return found, nil
}

// Create stores a new category.
func (s *Categories) Create(ctx context.Context, in models.CreateCategoryInput) (*models.Category, error) {
	existing, err := s.categories.FindByName(ctx, in.Name)
	if err != nil {
		return nil, apperror.NewInternalError("could not create category", err)
	}
	if existing != nil {
		return nil, nameTaken(in.Name, nil)
	}

	c, err := s.categories.Create(ctx, in)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, nameTaken(in.Name, err)
	}
	if err != nil {
		return nil, apperror.NewInternalError("could not create category", err)
	}
	s.cache.Invalidate(ctx)
	return c, nil
}

// Update applies a partial change. Renaming onto a name owned by another
// category is a conflict.
func (s *Categories) Update(ctx context.Context, id int64, in models.UpdateCategoryInput) (*models.Category, error) {
	current, err := s.FindOneByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if in.Name != nil && *in.Name != current.Name {
		name = *in.Name
		owner, err := s.categories.FindByName(ctx, name)
		if err != nil {
			return nil, apperror.NewInternalError("could not update category", err)
		}
		if owner != nil && owner.ID != id {
			return nil, nameTaken(name, nil)
		}
	}

	c, err := s.categories.Update(ctx, id, in)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, nameTaken(name, err)
	}
	if err != nil {
		return nil, apperror.NewInternalError("could not update category", err)
	}
	if c == nil {
		return nil, categoryNotFound(id)
	}
	s.cache.Invalidate(ctx)
	return c, nil
}

// Delete removes a category that no post references.
func (s *Categories) Delete(ctx context.Context, id int64) (string, error) {
	ok, err := s.categories.Delete(ctx, id)
	if errors.Is(err, store.ErrForeignKey) {
		return "", apperror.NewConflictError(fmt.Sprintf("category %d is still assigned to posts", id), err)
	}
	if err != nil {
		return "", apperror.NewInternalError("could not delete category", err)
	}
	if !ok {
		return "", categoryNotFound(id)
	}
	s.cache.Invalidate(ctx)
	return fmt.Sprintf("category %d deleted", id), nil
}

func categoryNotFound(id int64) error {
	return apperror.NewNotFoundError(fmt.Sprintf("category %d not found", id), nil)
}

func nameTaken(name string, err error) error {
	return apperror.NewConflictError(fmt.Sprintf("category %q already exists", name), err)
}

type noCache struct{}

func (noCache) Get(context.Context) ([]models.Category, int64, bool) { return nil, -1, false }

func (noCache) Set(context.Context, int64, []models.Category) {}

func (noCache) Invalidate(context.Context) {}
