package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record owned by the external auth component.
// This service only reads it to resolve display fields.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInfo is the projection attached to profile reads.
type UserInfo struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Info returns the public projection of the user.
func (u *User) Info() UserInfo {
	var info UserInfo
	if u == nil {
		return info
	}
	if u.Name != nil {
		info.Name = *u.Name
	}
	if u.AvatarURL != nil {
		info.Avatar = *u.AvatarURL
	}
	return info
}
