package models

import "gorm.io/gorm"

// User account types.
const (
	UserTypeAdmin = "admin"
	UserTypeUser  = "user"
)

// User is an authenticated account. The row exists as soon as registration
// succeeds; EmailVerified flips when the confirmation link is followed.
type User struct {
	gorm.Model
	Username      string `gorm:"size:255;not null"             json:"username"`
	Email         string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string `gorm:"size:255;not null"             json:"-"` // bcrypt hash, never serialised
	Type          string `gorm:"size:50;not null;default:user" json:"type"`
	EmailVerified bool   `gorm:"not null;default:false"        json:"email_verified"`
}

// IsAdmin reports whether the account has back-office privileges.
func (u *User) IsAdmin() bool { return u.Type == UserTypeAdmin }
