// Package service implements the blog's business rules on top of the
// stores. Every service takes its collaborators through its constructor and
// reports failures as apperror values.
package service

import (
	"context"

	"blogapi/internal/models"
	"blogapi/internal/store"
)

// UserRepository is the persistence used by Users.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	Update(ctx context.Context, id int64, email, passwordHash *string) (*models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ProfileRepository is the persistence used by Profiles and Users.
type ProfileRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, in models.CreateProfileInput) (*models.Profile, error)
	Update(ctx context.Context, id int64, in models.UpdateProfileInput) (*models.Profile, error)
}

// CategoryRepository is the persistence used by Categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, in models.CreateCategoryInput) (*models.Category, error)
	Update(ctx context.Context, id int64, in models.UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PostRepository is the persistence used by Posts.
type PostRepository interface {
	List(ctx context.Context, inc store.PostInclude) ([]models.Post, error)
	FindByID(ctx context.Context, id int64, inc store.PostInclude) (*models.Post, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListByCategory(ctx context.Context, categoryID int64, inc store.PostInclude) ([]models.Post, error)
	ListByProfile(ctx context.Context, profileID int64) ([]models.PostSummary, error)
	Create(ctx context.Context, profileID int64, in models.CreatePostInput) (int64, error)
	Update(ctx context.Context, id int64, in models.UpdatePostInput) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenSigner issues bearer tokens for a profile.
type TokenSigner interface {
	Issue(profileID int64) (string, error)
}

// CategoryCache holds the full category list between writes. A miss
// returns the cache generation; Set stores nothing once an Invalidate has
// moved the generation past gen. A negative gen disables the Set.
type CategoryCache interface {
	Get(ctx context.Context) (categories []models.Category, gen int64, ok bool)
	Set(ctx context.Context, gen int64, categories []models.Category)
	Invalidate(ctx context.Context)
}

// uniqueIDs drops repeated ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
