package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/config"
	"github.com/shashiranjanraj/shopctl/pkg/auth"
)

func init() {
	Register("admin_user", SeedAdminUser)
	Register("products", SeedProducts)
}

// SeedAdminUser creates the back-office account if it does not exist.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD.
func SeedAdminUser(db *gorm.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@shopctl.local")

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Username:      "admin",
		Email:         email,
		Password:      hash,
		Type:          models.UserTypeAdmin,
		EmailVerified: true,
	}).Error
}

// SeedProducts loads a small demo catalogue into an empty products table.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Espresso Beans 1kg", Description: "Dark roast, single origin", Price: decimal.NewFromFloat(24.90), Stock: 120, Status: true},
		{Name: "Ceramic Mug", Description: "350ml, matte finish", Price: decimal.NewFromFloat(12.50), Stock: 80, Status: true},
		{Name: "Pour-over Kettle", Description: "Gooseneck, 1L", Price: decimal.NewFromFloat(54.00), Stock: 25, Status: true},
		{Name: "Hand Grinder", Description: "Steel conical burr", Price: decimal.NewFromFloat(89.90), Stock: 15, Status: true},
		{Name: "Paper Filters (100)", Description: "Size 02, unbleached", Price: decimal.NewFromFloat(6.90), Stock: 300, Status: true},
		{Name: "Discontinued Sampler", Description: "No longer offered", Price: decimal.NewFromFloat(19.90), Stock: 0, Status: false},
	}
	return db.Create(&products).Error
}
