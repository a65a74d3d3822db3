package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID int `db:"id"`

	Username string `db:"username"`
	Name     string `db:"name"`

	IsAdmin     bool `db:"is_admin"`
	IsModerator bool `db:"is_moderator"`
	TrustLevel  int  `db:"trust_level"`

	AvatarAssetID *uuid.UUID `db:"avatar_asset_id"`

	DateJoined time.Time `db:"date_joined"`
}

func (u *User) BestName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Staff get moderation powers, including visibility into soft-deleted posts.
func (u *User) IsStaff() bool {
	return u.IsAdmin || u.IsModerator
}
