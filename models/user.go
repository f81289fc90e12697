package models

import "gorm.io/gorm"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Users holds the login identity. Profile data lives in Profile.
type Users struct {
	gorm.Model        // ID plus created/updated/deleted timestamps
	Email      string `json:"email" gorm:"size:255;uniqueIndex;not null"` // login name, stored as entered
	Password   string `json:"-" gorm:"not null"`                          // bcrypt hash, never serialized
	Role       string `json:"role" gorm:"size:20;not null;default:user"`  // user | admin
}

// explicit table name
func (Users) TableName() string {
	return "users"
}
