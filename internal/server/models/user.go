// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role values a user can carry. A user has exactly one role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AuthorityPrefix is prepended to the role to form the derived authority,
// e.g. role ADMIN -> authority ROLE_ADMIN.
const AuthorityPrefix = "ROLE_"

// User is the authenticated principal record. Account status flags
// (enabled, non-expired, non-locked) are permanently true in this system and
// are deliberately not stored.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Authority returns the role with the fixed authority marker prefix.
func (u *User) Authority() string {
	return AuthorityPrefix + u.Role
}

// HasAnyAuthority reports whether the user's authority matches one of the
// given authorities.
func (u *User) HasAnyAuthority(authorities ...string) bool {
	own := u.Authority()
	for _, a := range authorities {
		if a == own {
			return true
		}
	}
	return false
}
