package entities

import (
	"time"
)

// User types
const (
	UserTypePatient      = "patient"
	UserTypeProfessional = "professional"
)

// Roles
const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// Profile represents an authenticated user. AuthID is the identity issued by
// the external auth provider; one row per user.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	AuthID    string    `json:"auth_id" db:"auth_id"`
	Email     string    `json:"email" db:"email"`
	UserType  string    `json:"user_type" db:"user_type"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
