// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a site administrator. There is no role hierarchy: every user may
// manage all content.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"twoFactorEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Requires2FA returns true when login must present a valid TOTP code.
func (u *User) Requires2FA() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil && *u.TOTPSecret != ""
}

// PublicUser is the trimmed identity returned by the auth endpoints.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the identity fields safe to send to the browser.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID.String(), Email: u.Email, Name: u.Name}
}
