package models

import "time"

// Post is a blog entry written by exactly one profile.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    *string   `json:"content"`
	CoverImage *string   `json:"cover_image"`
	Summary    *string   `json:"summary"`
	IsDraft    bool      `json:"is_draft"`
	ProfileID  int64     `json:"profile_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Rendered from Content on the detail endpoint.
	ContentHTML string `json:"content_html,omitempty"`

	// Relations, populated only when requested. Loaded categories are never
	// nil, so a post without any still renders "categories": [].
	Profile    *Profile   `json:"profile,omitempty"`
	Categories []Category `json:"categories,omitzero"`
}

// PostAuthor identifies who wrote a post in a PostSummary.
type PostAuthor struct {
	ProfileID int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
}

// PostSummary is the narrowed projection returned when listing the posts of
// one profile.
type PostSummary struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title"`
	Author     PostAuthor    `json:"author"`
	Categories []CategoryRef `json:"categories"`
}
