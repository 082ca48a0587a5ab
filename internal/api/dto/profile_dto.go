package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ProfileResponse represents a profile row.
type ProfileResponse struct {
	ID         string      `json:"id"`
	FullName   string      `json:"full_name"`
	AvatarURL  *string     `json:"avatar_url"`
	Role       domain.Role `json:"role"`
	Department *string     `json:"department"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// PartyResponse is the display identity joined onto tickets and comments.
type PartyResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"full_name"`
	AvatarURL *string     `json:"avatar_url"`
	Role      domain.Role `json:"role"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateProfileRequest payload for editing one's own display identity.
// A null avatar_url clears the avatar.
type UpdateProfileRequest struct {
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// FromProfile maps a domain profile.
func FromProfile(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:         profile.ID,
		FullName:   profile.FullName,
		AvatarURL:  profile.AvatarURL,
		Role:       profile.Role,
		Department: profile.Department,
		CreatedAt:  profile.CreatedAt,
		UpdatedAt:  profile.UpdatedAt,
	}
}

// FromParty maps a display identity reference.
func FromParty(party domain.PartyRef) PartyResponse {
	return PartyResponse{
		ID:        party.ID,
		FullName:  party.FullName,
		AvatarURL: party.AvatarURL,
		Role:      party.Role,
	}
}
