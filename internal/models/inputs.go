package models

// Request bodies accepted by the API. Validation rules are expressed as
// validator tags and checked by the handlers before any service call.

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type UpdateUserInput struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,strongpassword"`
}

// LoginInput is read by the local auth strategy, which only requires both
// fields to be present. Anything else fails as invalid credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateProfileInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=255"`
	LastName string  `json:"lastname" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Avatar   *string `json:"avatar" validate:"omitempty,url,max=300"`
	// Taken from the route, not the body.
	UserID int64 `json:"-" validate:"gt=0"`
}

type UpdateProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	LastName *string `json:"lastname" validate:"omitempty,min=2,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Avatar   *string `json:"avatar" validate:"omitempty,url,max=300"`
}

type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=800"`
	CoverImage  *string `json:"cover_image" validate:"omitempty,url,max=800"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=800"`
	CoverImage  *string `json:"cover_image" validate:"omitempty,url,max=800"`
}

type CreatePostInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Content     *string `json:"content"`
	CoverImage  *string `json:"cover_image" validate:"omitempty,url,max=255"`
	Summary     *string `json:"summary" validate:"omitempty,min=1,max=255"`
	IsDraft     *bool   `json:"is_draft"`
	CategoryIDs []int64 `json:"category_ids"`
}

// UpdatePostInput is a partial update. A nil CategoryIDs leaves the post's
// categories untouched; a non-nil one replaces the whole set.
type UpdatePostInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Content     *string  `json:"content"`
	CoverImage  *string  `json:"cover_image" validate:"omitempty,url,max=255"`
	Summary     *string  `json:"summary" validate:"omitempty,min=1,max=255"`
	IsDraft     *bool    `json:"is_draft"`
	CategoryIDs *[]int64 `json:"category_ids"`
}

// HasFieldChanges reports whether any column of the post itself is being set.
func (in *UpdatePostInput) HasFieldChanges() bool {
	return in.Title != nil || in.Content != nil || in.CoverImage != nil ||
		in.Summary != nil || in.IsDraft != nil
}
