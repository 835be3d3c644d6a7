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

// PostInclude selects which relations a read loads alongside the posts.
type PostInclude struct {
	Profile    bool // author profile together with its owning user
	Categories bool
}

// PostStore manages posts and their category associations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.content, p.cover_image, p.summary, p.is_draft, p.profile_id, p.created_at, p.updated_at`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Content, &p.CoverImage, &p.Summary,
		&p.IsDraft, &p.ProfileID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// List returns all posts, newest first.
func (s *PostStore) List(ctx context.Context, inc PostInclude) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts p ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, posts, inc); err != nil {
		return nil, err
	}
	return posts, nil
}

// FindByID returns a post with the requested relations. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64, inc PostInclude) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}

	posts := []models.Post{*p}
	if err := s.loadRelations(ctx, posts, inc); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// Exists reports whether a post with the given id exists.
func (s *PostStore) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, "posts", id)
}

// ListByCategory returns the posts associated with a category, newest first.
func (s *PostStore) ListByCategory(ctx context.Context, categoryID int64, inc PostInclude) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN posts_categories pc ON pc.post_id = p.id
		WHERE pc.category_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, posts, inc); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByProfile returns the narrowed summaries of the posts a profile wrote.
func (s *PostStore) ListByProfile(ctx context.Context, profileID int64) ([]models.PostSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, pr.id, u.id, u.email
		FROM posts p
		JOIN profiles pr ON pr.id = p.profile_id
		JOIN users u ON u.id = pr.user_id
		WHERE p.profile_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list posts by profile: %w", err)
	}
	defer rows.Close()

	summaries := []models.PostSummary{}
	var ids []int64
	for rows.Next() {
		var ps models.PostSummary
		if err := rows.Scan(&ps.ID, &ps.Title, &ps.Author.ProfileID, &ps.Author.UserID, &ps.Author.Email); err != nil {
			return nil, fmt.Errorf("scan post summary: %w", err)
		}
		summaries = append(summaries, ps)
		ids = append(ids, ps.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byPost, err := s.categoriesByPost(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		refs := []models.CategoryRef{}
		for _, c := range byPost[summaries[i].ID] {
			refs = append(refs, models.CategoryRef{ID: c.ID, Name: c.Name})
		}
		summaries[i].Categories = refs
	}
	return summaries, nil
}

// Create inserts a post authored by profileID together with its category
// associations in a single transaction and returns the new post id.
// Unknown profile or category ids fail with ErrForeignKey and leave
// nothing behind.
func (s *PostStore) Create(ctx context.Context, profileID int64, in models.CreatePostInput) (int64, error) {
	isDraft := true
	if in.IsDraft != nil {
		isDraft = *in.IsDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, content, cover_image, summary, is_draft, profile_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, in.Title, in.Content, in.CoverImage, in.Summary, isDraft, profileID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create post: %w", translate(err))
	}

	if err := replaceCategories(ctx, tx, id, in.CategoryIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit post: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of in. When in.CategoryIDs is set the
// post's category set is replaced in the same transaction. A change that
// only touches categories leaves the post row, and its updated_at, alone.
// Reports whether the post existed.
func (s *PostStore) Update(ctx context.Context, id int64, in models.UpdatePostInput) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var found bool
	if in.HasFieldChanges() {
		found, err = updatePostColumns(ctx, tx, id, in)
	} else {
		found, err = lockPost(ctx, tx, id)
	}
	if err != nil || !found {
		return false, err
	}

	if in.CategoryIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts_categories WHERE post_id = $1`, id); err != nil {
			return false, fmt.Errorf("clear post categories: %w", err)
		}
		if err := replaceCategories(ctx, tx, id, *in.CategoryIDs); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit post update: %w", err)
	}
	return true, nil
}

func updatePostColumns(ctx context.Context, tx *sql.Tx, id int64, in models.UpdatePostInput) (bool, error) {
	b := psql.Update("posts").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
	if in.Title != nil {
		b = b.Set("title", *in.Title)
	}
	if in.Content != nil {
		b = b.Set("content", *in.Content)
	}
	if in.CoverImage != nil {
		b = b.Set("cover_image", *in.CoverImage)
	}
	if in.Summary != nil {
		b = b.Set("summary", *in.Summary)
	}
	if in.IsDraft != nil {
		b = b.Set("is_draft", *in.IsDraft)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("build post update: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update post: %w", translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return n > 0, nil
}

// lockPost holds the post row until the transaction ends, so a concurrent
// delete cannot slip in under the category replacement.
func lockPost(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var got int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock post: %w", err)
	}
	return true, nil
}

// Delete removes a post. Its category associations go with it by cascade.
func (s *PostStore) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := deleteByID(ctx, s.db, "posts", id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return ok, nil
}

// replaceCategories inserts one association row per distinct category id.
// The caller clears existing rows first when replacing a set.
func replaceCategories(ctx context.Context, q queryer, postID int64, categoryIDs []int64) error {
	ids := dedupe(categoryIDs)
	if len(ids) == 0 {
		return nil
	}

	ins := psql.Insert("posts_categories").Columns("post_id", "category_id")
	for _, cid := range ids {
		ins = ins.Values(postID, cid)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build post categories insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert post categories: %w", translate(err))
	}
	return nil
}

// loadRelations fills the relations selected by inc on every post.
func (s *PostStore) loadRelations(ctx context.Context, posts []models.Post, inc PostInclude) error {
	if len(posts) == 0 {
		return nil
	}

	if inc.Categories {
		ids := make([]int64, len(posts))
		for i := range posts {
			ids[i] = posts[i].ID
		}
		byPost, err := s.categoriesByPost(ctx, ids)
		if err != nil {
			return err
		}
		for i := range posts {
			cats := byPost[posts[i].ID]
			if cats == nil {
				cats = []models.Category{}
			}
			posts[i].Categories = cats
		}
	}

	if inc.Profile {
		ids := make([]int64, len(posts))
		for i := range posts {
			ids[i] = posts[i].ProfileID
		}
		profiles, err := s.profilesByID(ctx, ids)
		if err != nil {
			return err
		}
		for i := range posts {
			posts[i].Profile = profiles[posts[i].ProfileID]
		}
	}
	return nil
}

// categoriesByPost returns the categories of each post, keyed by post id
// and ordered by name.
func (s *PostStore) categoriesByPost(ctx context.Context, postIDs []int64) (map[int64][]models.Category, error) {
	out := make(map[int64][]models.Category, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	query, args, err := psql.Select(
		"pc.post_id", "c.id", "c.name", "c.description", "c.cover_image", "c.created_at", "c.updated_at",
	).
		From("posts_categories pc").
		Join("categories c ON c.id = pc.category_id").
		Where(sq.Eq{"pc.post_id": dedupe(postIDs)}).
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post categories query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load post categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var c models.Category
		if err := rows.Scan(&postID, &c.ID, &c.Name, &c.Description, &c.CoverImage, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post category: %w", err)
		}
		out[postID] = append(out[postID], c)
	}
	return out, rows.Err()
}

// profilesByID loads the given profiles with their owning users.
func (s *PostStore) profilesByID(ctx context.Context, ids []int64) (map[int64]*models.Profile, error) {
	query, args, err := psql.Select(profileWithUserColumns).
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.id": dedupe(ids)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post profiles query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load post profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*models.Profile, len(ids))
	for rows.Next() {
		p, err := scanProfileWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post profile: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
