package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	// OrderStatusReceived is the sole initial state: the order exists but has
	// not been paid, and no stock has been consumed for it.
	OrderStatusReceived OrderStatus = "RECEIVED"
	// OrderStatusInPreparation is entered only through a successful payment;
	// the stock decrement happens in the same transaction as this transition.
	OrderStatusInPreparation OrderStatus = "IN_PREPARATION"
	OrderStatusDispatched    OrderStatus = "DISPATCHED"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
)

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusInPreparation, OrderStatusDispatched, OrderStatusDelivered:
		return true
	}
	return false
}

// Order is a checked-out cart. Total is frozen at creation and always equals
// the sum of its items' subtotals.
type Order struct {
	gorm.Model
	ClientID uint            `gorm:"not null;index" json:"client_id"`
	Client   *Client         `json:"client,omitempty"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status   OrderStatus     `gorm:"size:50;not null;default:RECEIVED" json:"status"`
	Items    []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem snapshots one cart line at order-creation time. Price and
// Quantity are frozen; later product edits never touch them.
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}
