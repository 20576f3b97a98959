package models

import "gorm.io/gorm"

// CartItem is one (client, product) line in the shopping cart.
//
// Quantity is always > 0 while the row exists; a merge that lands at zero or
// below deletes the row instead. The composite unique index makes the
// create-side of a concurrent double-add fail at the database rather than
// producing two lines for the same pair.
type CartItem struct {
	gorm.Model
	ClientID  uint `gorm:"not null;uniqueIndex:idx_cart_client_product" json:"client_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_client_product" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`
}
