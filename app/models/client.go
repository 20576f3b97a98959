package models

import "gorm.io/gorm"

// Client is the shopper profile attached to a user account. A user owns at
// most one client record; carts and orders hang off the client, not the user.
type Client struct {
	gorm.Model
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null"    json:"name"`
	Phone     string    `gorm:"size:50"              json:"phone"`
	CPF       string    `gorm:"size:20"              json:"cpf"`
	Addresses []Address `gorm:"constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
}

// Address is a shipping address. Exactly one address per client is flagged
// active; order fulfilment reads the active one.
type Address struct {
	gorm.Model
	ClientID     uint   `gorm:"not null;index" json:"client_id"`
	Street       string `gorm:"size:255;not null" json:"street"`
	Number       string `gorm:"size:20"        json:"number"`
	Complement   string `gorm:"size:255"       json:"complement,omitempty"`
	Neighborhood string `gorm:"size:255"       json:"neighborhood"`
	City         string `gorm:"size:255;not null" json:"city"`
	State        string `gorm:"size:50;not null"  json:"state"`
	ZipCode      string `gorm:"size:20;not null"  json:"zip_code"`
	Active       bool   `gorm:"not null;default:true" json:"active"`
}
