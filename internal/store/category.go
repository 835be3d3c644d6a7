// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"blogapi/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, cover_image, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.CoverImage, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()
	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collectCategories(rows)
}

// FindByID returns a category by id. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName returns a category by its exact name. Returns nil if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// FindByIDs returns the categories whose id is in ids. Unknown ids are
// simply absent from the result; an empty ids yields an empty result.
func (s *CategoryStore) FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}

	query, args, err := psql.Select(categoryColumns).
		From("categories").
		Where(sq.Eq{"id": dedupe(ids)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category lookup: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find categories by ids: %w", err)
	}
	return collectCategories(rows)
}

// Exists reports whether a category with the given id exists.
func (s *CategoryStore) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, "categories", id)
}

// Create inserts a category. A taken name fails with ErrDuplicate.
func (s *CategoryStore) Create(ctx context.Context, in models.CreateCategoryInput) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description, cover_image)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		in.Name, in.Description, in.CoverImage,
	))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", translate(err))
	}
	return c, nil
}

// Update applies the non-nil fields of in. Returns nil if not found.
func (s *CategoryStore) Update(ctx context.Context, id int64, in models.UpdateCategoryInput) (*models.Category, error) {
	b := psql.Update("categories").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + categoryColumns)
	if in.Name != nil {
		b = b.Set("name", *in.Name)
	}
	if in.Description != nil {
		b = b.Set("description", *in.Description)
	}
	if in.CoverImage != nil {
		b = b.Set("cover_image", *in.CoverImage)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category update: %w", err)
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", translate(err))
	}
	return c, nil
}

// Delete removes a category. Posts are never deleted with it: while any
// post still references the category the delete fails with ErrForeignKey.
func (s *CategoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := deleteByID(ctx, s.db, "categories", id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return ok, nil
}
