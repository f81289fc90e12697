package models

import "time"

// Profile is the public part of a user, one row per user.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement:false"` // equals Users.ID
	Username  string    `json:"username" gorm:"size:50"`                 // display name, at most 50 characters
	FullName  string    `json:"full_name" gorm:"size:100"`
	AvatarURL string    `json:"avatar_url" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"` // bumped by every profile update
}

// explicit table name
func (Profile) TableName() string {
	return "profiles"
}
