package domain

import "time"

// Role enumerates application-level roles carried by a profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role grants triage capabilities.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// Identity is an authenticated account, distinct from its Profile.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the application's record of a user. Exactly one exists
// per identity and shares its id.
type Profile struct {
	ID         string
	FullName   string
	AvatarURL  *string
	Role       Role
	Department *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
