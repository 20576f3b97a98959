package services

import "github.com/shashiranjanraj/shopctl/app/models"

// Identity is the resolved caller, produced by the auth middleware from the
// JWT claims. Services never trust a client-supplied user id; they receive
// this instead.
type Identity struct {
	UserID uint
	Type   string
}

// IsAdmin reports whether the caller has back-office privileges.
func (i Identity) IsAdmin() bool { return i.Type == models.UserTypeAdmin }
