// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"blogapi/internal/apperror"
	"blogapi/internal/models"
	"blogapi/internal/store"
)

const invalidCategoriesMsg = "invalid or not-found category ids"

// ProfileChecker checks that a profile exists. Profiles satisfies it.
type ProfileChecker interface {
	JustFindID(ctx context.Context, id int64) (int64, error)
}

// CategoryResolver resolves category ids. Categories satisfies it.
type CategoryResolver interface {
	JustFindID(ctx context.Context, id int64) (int64, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error)
}

// PostsConfig tunes the Posts service.
type PostsConfig struct {
	// StrictCategoryUpdate rejects an update whose category_ids contain an
	// unknown id. When false, unknown ids are dropped and the post keeps
	// only the categories that exist.
	StrictCategoryUpdate bool

	// Render converts post content to HTML for the detail view. Optional.
	Render func(source string) (string, error)
}

// Posts manages posts and their category associations.
type Posts struct {
	posts      PostRepository
	profiles   ProfileChecker
	categories CategoryResolver
	cfg        PostsConfig
}

// NewPosts returns a Posts service.
func NewPosts(posts PostRepository, profiles ProfileChecker, categories CategoryResolver, cfg PostsConfig) *Posts {
	return &Posts{posts: posts, profiles: profiles, categories: categories, cfg: cfg}
}

var withRelations = store.PostInclude{Profile: true, Categories: true}

// FindAll returns every post without relations.
func (s *Posts) FindAll(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, store.PostInclude{})
	if err != nil {
		return nil, apperror.NewInternalError("could not list posts", err)
	}
	return posts, nil
}

// FindOneByID returns a post with its author (and the author's user) and
// categories, plus the rendered content.
func (s *Posts) FindOneByID(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id, withRelations)
	if err != nil {
		return nil, apperror.NewInternalError("could not load post", err)
	}
	if p == nil {
		return nil, postNotFound(id)
	}
	s.render(p)
	return p, nil
}

// JustFindID checks that a post exists without loading it.
func (s *Posts) JustFindID(ctx context.Context, id int64) (int64, error) {
	ok, err := s.posts.Exists(ctx, id)
	if err != nil {
		return 0, apperror.NewInternalError("could not look up post", err)
	}
	if !ok {
		return 0, postNotFound(id)
	}
	return id, nil
}

// FindAllByProfile returns the narrowed summaries of a profile's posts.
func (s *Posts) FindAllByProfile(ctx context.Context, profileID int64) ([]models.PostSummary, error) {
	if _, err := s.profiles.JustFindID(ctx, profileID); err != nil {
		return nil, apperror.Wrap(err, "list profile posts")
	}
	summaries, err := s.posts.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperror.NewInternalError("could not list profile posts", err)
	}
	return summaries, nil
}

// FindByCategoryID returns the posts carrying a category, with relations.
func (s *Posts) FindByCategoryID(ctx context.Context, categoryID int64) ([]models.Post, error) {
	if _, err := s.categories.JustFindID(ctx, categoryID); err != nil {
		return nil, apperror.Wrap(err, "list category posts")
	}
	posts, err := s.posts.ListByCategory(ctx, categoryID, withRelations)
	if err != nil {
		return nil, apperror.NewInternalError("could not list category posts", err)
	}
	return posts, nil
}

// Create stores a post written by authorProfileID. Every requested
// category must exist; otherwise nothing is written.
func (s *Posts) Create(ctx context.Context, in models.CreatePostInput, authorProfileID int64) (*models.Post, error) {
	if _, err := s.profiles.JustFindID(ctx, authorProfileID); err != nil {
		return nil, apperror.Wrap(err, "create post")
	}

	ids, err := s.resolveCategories(ctx, in.CategoryIDs, true)
	if err != nil {
		return nil, err
	}
	in.CategoryIDs = ids

	id, err := s.posts.Create(ctx, authorProfileID, in)
	if errors.Is(err, store.ErrForeignKey) {
		// A category or the profile disappeared after the checks above.
		return nil, apperror.NewBadRequestError(invalidCategoriesMsg, err)
	}
	if err != nil {
		return nil, apperror.NewInternalError("could not create post", err)
	}
	return s.FindOneByID(ctx, id)
}

// Update applies a partial change. A provided category_ids replaces the
// post's whole category set.
func (s *Posts) Update(ctx context.Context, id int64, in models.UpdatePostInput) (*models.Post, error) {
	if _, err := s.JustFindID(ctx, id); err != nil {
		return nil, err
	}

	if in.CategoryIDs != nil {
		ids, err := s.resolveCategories(ctx, *in.CategoryIDs, s.cfg.StrictCategoryUpdate)
		if err != nil {
			return nil, err
		}
		in.CategoryIDs = &ids
	}

	ok, err := s.posts.Update(ctx, id, in)
	if errors.Is(err, store.ErrForeignKey) {
		return nil, apperror.NewBadRequestError(invalidCategoriesMsg, err)
	}
	if err != nil {
		return nil, apperror.NewInternalError("could not update post", err)
	}
	if !ok {
		return nil, postNotFound(id)
	}
	return s.FindOneByID(ctx, id)
}

// Delete removes a post. Its category associations go with it.
func (s *Posts) Delete(ctx context.Context, id int64) (string, error) {
	if _, err := s.JustFindID(ctx, id); err != nil {
		return "", err
	}
	ok, err := s.posts.Delete(ctx, id)
	if err != nil {
		return "", apperror.NewBadRequestError("could not delete post", err)
	}
	if !ok {
		return "", postNotFound(id)
	}
	return fmt.Sprintf("post %d deleted", id), nil
}

// resolveCategories dedupes ids and looks them up. With strict set, any
// unknown id fails the whole request; otherwise only known ids are kept.
func (s *Posts) resolveCategories(ctx context.Context, requested []int64, strict bool) ([]int64, error) {
	ids := uniqueIDs(requested)
	found, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Wrap(err, "resolve categories")
	}
	if strict && len(found) != len(ids) {
		return nil, apperror.NewBadRequestError(invalidCategoriesMsg, nil)
	}

	resolved := make([]int64, 0, len(found))
	for _, c := range found {
		resolved = append(resolved, c.ID)
	}
	return resolved, nil
}

func (s *Posts) render(p *models.Post) {
	if s.cfg.Render == nil || p.Content == nil || *p.Content == "" {
		return
	}
	html, err := s.cfg.Render(*p.Content)
	if err != nil {
		slog.Warn("render post content failed", "post_id", p.ID, "error", err)
		return
	}
	p.ContentHTML = html
}

func postNotFound(id int64) error {
	return apperror.NewNotFoundError(fmt.Sprintf("post %d not found", id), nil)
}
