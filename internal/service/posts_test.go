// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"blogapi/internal/apperror"
	"blogapi/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestPostsCreate(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	u, p := f.author("a@x.com")
	goCat := f.category("Go")
	rust := f.category("Rust")

	post, err := f.posts.Create(ctx, models.CreatePostInput{
		Title:       "Hello",
		Content:     ptr("hi"),
		CategoryIDs: []int64{goCat.ID, rust.ID, goCat.ID},
	}, p.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if post.ProfileID != p.ID {
		t.Errorf("ProfileID = %d, want %d", post.ProfileID, p.ID)
	}
	if !post.IsDraft {
		t.Error("IsDraft should default to true")
	}
	if got := categoryIDs(post); !slices.Equal(got, []int64{goCat.ID, rust.ID}) {
		t.Errorf("categories = %v", got)
	}
	if post.Profile == nil || post.Profile.User == nil || post.Profile.User.ID != u.ID {
		t.Errorf("author not loaded: %+v", post.Profile)
	}
	if post.ContentHTML != "<p>hi</p>" {
		t.Errorf("ContentHTML = %q", post.ContentHTML)
	}
}

func TestPostsCreateRejectsUnknownCategory(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	_, p := f.author("a@x.com")
	a := f.category("Go")
	b := f.category("Rust")

	_, err := f.posts.Create(ctx, models.CreatePostInput{
		Title:       "Hello",
		CategoryIDs: []int64{a.ID, b.ID, 999},
	}, p.ID)
	if !apperror.IsBadRequest(err) {
		t.Fatalf("err = %v, want BadRequest", err)
	}
	if len(f.db.posts) != 0 || len(f.db.postCats) != 0 {
		t.Errorf("partial write: %d posts, %d join sets", len(f.db.posts), len(f.db.postCats))
	}
}

func TestPostsCreateUnknownAuthor(t *testing.T) {
	f := newFixture(true)
	_, err := f.posts.Create(context.Background(), models.CreatePostInput{Title: "x"}, 999)
	if !apperror.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestPostsUpdateCategories(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		ids      func(a, b int64) []int64
		wantErr  bool
		wantCats func(a, b int64) []int64
	}{
		{
			name:     "replace set",
			strict:   true,
			ids:      func(a, b int64) []int64 { return []int64{b} },
			wantCats: func(a, b int64) []int64 { return []int64{b} },
		},
		{
			name:     "empty set clears",
			strict:   true,
			ids:      func(a, b int64) []int64 { return []int64{} },
			wantCats: func(a, b int64) []int64 { return nil },
		},
		{
			name:     "strict rejects unknown id",
			strict:   true,
			ids:      func(a, b int64) []int64 { return []int64{b, 999} },
			wantErr:  true,
			wantCats: func(a, b int64) []int64 { return []int64{a} },
		},
		{
			name:     "lenient drops unknown id",
			strict:   false,
			ids:      func(a, b int64) []int64 { return []int64{b, 999} },
			wantCats: func(a, b int64) []int64 { return []int64{b} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.strict)
			ctx := context.Background()
			_, p := f.author("a@x.com")
			a := f.category("Go")
			b := f.category("Rust")

			post, err := f.posts.Create(ctx, models.CreatePostInput{Title: "t", CategoryIDs: []int64{a.ID}}, p.ID)
			if err != nil {
				t.Fatal(err)
			}

			ids := tt.ids(a.ID, b.ID)
			_, err = f.posts.Update(ctx, post.ID, models.UpdatePostInput{CategoryIDs: &ids})
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !apperror.IsBadRequest(err) {
				t.Errorf("err = %v, want BadRequest", err)
			}

			stored, err := f.posts.FindOneByID(ctx, post.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := categoryIDs(stored), tt.wantCats(a.ID, b.ID); !slices.Equal(got, want) {
				t.Errorf("categories = %v, want %v", got, want)
			}
		})
	}
}

func TestPostsUpdateFields(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	_, p := f.author("a@x.com")
	c := f.category("Go")

	post, err := f.posts.Create(ctx, models.CreatePostInput{Title: "t", CategoryIDs: []int64{c.ID}}, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.posts.Update(ctx, post.ID, models.UpdatePostInput{Title: ptr("new"), IsDraft: ptr(false)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "new" || got.IsDraft {
		t.Errorf("got title=%q draft=%v", got.Title, got.IsDraft)
	}
	if !slices.Equal(categoryIDs(got), []int64{c.ID}) {
		t.Errorf("categories changed without category_ids: %v", categoryIDs(got))
	}

	if _, err := f.posts.Update(ctx, 999, models.UpdatePostInput{Title: ptr("x")}); !apperror.IsNotFound(err) {
		t.Errorf("missing: err = %v, want NotFound", err)
	}
}

func TestPostsDelete(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	_, p := f.author("a@x.com")
	c := f.category("Go")

	post, err := f.posts.Create(ctx, models.CreatePostInput{Title: "t", CategoryIDs: []int64{c.ID}}, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := f.posts.Delete(ctx, post.ID)
	if err != nil || msg == "" {
		t.Fatalf("Delete = %q, %v", msg, err)
	}
	if _, ok := f.db.postCats[post.ID]; ok {
		t.Error("category associations survived the post")
	}
	if _, ok := f.db.categories[c.ID]; !ok {
		t.Error("category removed along with the post")
	}
	if _, err := f.posts.Delete(ctx, post.ID); !apperror.IsNotFound(err) {
		t.Errorf("second Delete: err = %v, want NotFound", err)
	}
}

func TestPostsListings(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	u, p := f.author("a@x.com")
	_, other := f.author("b@x.com")
	goCat := f.category("Go")
	rust := f.category("Rust")

	mine, err := f.posts.Create(ctx, models.CreatePostInput{Title: "mine", CategoryIDs: []int64{goCat.ID}}, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.posts.Create(ctx, models.CreatePostInput{Title: "theirs", CategoryIDs: []int64{rust.ID}}, other.ID); err != nil {
		t.Fatal(err)
	}

	all, err := f.posts.FindAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("FindAll = %d posts, %v", len(all), err)
	}
	for _, post := range all {
		if post.Profile != nil || post.Categories != nil {
			t.Errorf("FindAll loaded relations for post %d", post.ID)
		}
	}

	summaries, err := f.posts.FindAllByProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindAllByProfile: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != mine.ID {
		t.Fatalf("summaries = %+v", summaries)
	}
	s := summaries[0]
	if s.Author.ProfileID != p.ID || s.Author.UserID != u.ID || s.Author.Email != u.Email {
		t.Errorf("author = %+v", s.Author)
	}
	if len(s.Categories) != 1 || s.Categories[0].Name != "Go" {
		t.Errorf("categories = %+v", s.Categories)
	}

	byCat, err := f.posts.FindByCategoryID(ctx, rust.ID)
	if err != nil {
		t.Fatalf("FindByCategoryID: %v", err)
	}
	if len(byCat) != 1 || byCat[0].Title != "theirs" || byCat[0].Profile == nil {
		t.Errorf("byCat = %+v", byCat)
	}

	if _, err := f.posts.FindAllByProfile(ctx, 999); !apperror.IsNotFound(err) {
		t.Errorf("unknown profile: err = %v, want NotFound", err)
	}
	if _, err := f.posts.FindByCategoryID(ctx, 999); !apperror.IsNotFound(err) {
		t.Errorf("unknown category: err = %v, want NotFound", err)
	}
}

func TestPostsRenderFailureKeepsPost(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	_, p := f.author("a@x.com")

	f.posts.cfg.Render = func(string) (string, error) { return "", errors.New("bad markdown") }
	post, err := f.posts.Create(ctx, models.CreatePostInput{Title: "t", Content: ptr("x")}, p.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ContentHTML != "" {
		t.Errorf("ContentHTML = %q, want empty", post.ContentHTML)
	}
}
