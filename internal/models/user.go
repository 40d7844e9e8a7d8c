// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the store.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleMember    Role = "member"
)

// User represents a store account with authentication and 2FA fields.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Needs2FASetup returns true if an admin has not completed 2FA enrollment.
// Admin accounts must set up 2FA on their first login.
func (u *User) Needs2FASetup() bool {
	return u.IsAdmin() && !u.TOTPEnabled
}

// InstalledApp records one entry of a user's installed-apps map: which
// app, which version, and the version timestamp the app carried when the
// install happened. Update checks compare this timestamp against the
// catalog's latest version timestamp.
type InstalledApp struct {
	UserID      uuid.UUID `json:"user_id"`
	AppID       uuid.UUID `json:"app_id"`
	Version     string    `json:"version"`
	VersionAt   time.Time `json:"version_at"`
	InstalledAt time.Time `json:"installed_at"`
}

// HasUpdate reports whether the installed version is strictly older than
// the given latest version timestamp. An install at exactly the latest
// timestamp counts as up to date.
func (ia *InstalledApp) HasUpdate(latestVersionAt time.Time) bool {
	return ia.VersionAt.Before(latestVersionAt)
}
