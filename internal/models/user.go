// Package models defines the data structures that map to database tables
// and the request inputs accepted by the API.
package models

import "time"

// User is a login credential. The author-facing identity lives in Profile.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Loaded on request; nil until the user creates a profile.
	Profile *Profile `json:"profile,omitempty"`
}

// ProfileID returns the id of the user's profile and whether one is loaded.
func (u *User) ProfileID() (int64, bool) {
	if u.Profile == nil {
		return 0, false
	}
	return u.Profile.ID, true
}
