package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue entry. Stock never goes negative: the only writer
// that lowers it is the conditional decrement in the order payment path.
type Product struct {
	gorm.Model
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text"               json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0"      json:"stock"`
	Status      bool            `gorm:"not null;default:true"   json:"status"` // availability flag
	Images      []ProductImage  `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// ProductImage stores where an uploaded image lives. Key is set only for
// objects pushed to S3; local files carry just the Path.
type ProductImage struct {
	gorm.Model
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Path      string `gorm:"size:512;not null" json:"path"`
	Key       string `gorm:"size:512" json:"-"`
}
