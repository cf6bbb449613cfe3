package domain

import "time"

// Role is the closed set of user categories. Permission resolution is an
// exhaustive switch over this type; adding a role means updating
// auth.PermissionsFor as well.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is a known member of the enum.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
