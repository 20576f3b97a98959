package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/cache"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
	"github.com/shashiranjanraj/shopctl/pkg/storage"
)

const productCacheTTL = 5 * time.Minute

// CreateProductInput carries a new catalogue entry.
type CreateProductInput struct {
	Name        string          `json:"name"        validate:"required,min=2,max=120"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"       validate:"required"`
	Stock       int             `json:"stock"`
	Status      *bool           `json:"status"`
}

// UpdateProductInput carries a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name"        validate:"nullable,min=2,max=120"`
	Description *string          `json:"description" validate:"nullable,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Status      *bool            `json:"status"`
}

// ProductsService owns the catalogue: CRUD, image attachments and the
// read-through cache for single-product lookups.
type ProductsService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
}

func NewProductsService(db *gorm.DB) *ProductsService {
	return &ProductsService{db: db, products: repositories.NewProductRepository(db)}
}

func productCacheKey(id uint) string { return fmt.Sprintf("products:%d", id) }

// Create adds a product to the catalogue. Price must be non-negative and
// stock cannot start below zero.
func (s *ProductsService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if in.Price.IsNegative() {
		return nil, apperr.BadRequest("Price cannot be negative")
	}
	if in.Stock < 0 {
		return nil, apperr.BadRequest("Stock cannot be negative")
	}

	status := true
	if in.Status != nil {
		status = *in.Status
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      status,
	}
	if err := s.products.WithTx(s.db.WithContext(ctx)).Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID returns one product, served from cache when possible.
func (s *ProductsService) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var cached models.Product
	if cache.Get(productCacheKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.products.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}

	_ = cache.Set(productCacheKey(id), product, productCacheTTL)
	return product, nil
}

// GetAll lists products with typed filters and pagination.
func (s *ProductsService) GetAll(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, orm.Pagination, error) {
	return s.products.WithTx(s.db.WithContext(ctx)).FindMany(filter)
}

// Update applies the non-nil fields of the input and invalidates the cache.
func (s *ProductsService) Update(ctx context.Context, id uint, in UpdateProductInput) (*models.Product, error) {
	product, err := s.products.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, apperr.BadRequest("Price cannot be negative")
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, apperr.BadRequest("Stock cannot be negative")
		}
		product.Stock = *in.Stock
	}
	if in.Status != nil {
		product.Status = *in.Status
	}

	if err := s.products.WithTx(s.db.WithContext(ctx)).Update(product); err != nil {
		return nil, err
	}
	_ = cache.Forget(productCacheKey(id))
	return product, nil
}

// Delete removes a product and its stored images.
func (s *ProductsService) Delete(ctx context.Context, id uint) error {
	product, err := s.products.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	for _, img := range product.Images {
		if img.Key != "" {
			_ = storage.Delete(img.Key)
		}
	}

	if err := s.products.WithTx(s.db.WithContext(ctx)).DeleteByID(id); err != nil {
		return err
	}
	_ = cache.Forget(productCacheKey(id))
	return nil
}

// AttachImage stores an uploaded image on the configured disk and records it
// against the product. The original filename only contributes its extension.
func (s *ProductsService) AttachImage(ctx context.Context, productID uint, filename string, content []byte) (*models.ProductImage, error) {
	if _, err := s.products.WithTx(s.db.WithContext(ctx)).FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return nil, apperr.BadRequest("Unsupported image format")
	}

	key := fmt.Sprintf("products/%d/%s%s", productID, uuid.NewString(), ext)
	if err := storage.Put(key, content); err != nil {
		return nil, err
	}

	image := &models.ProductImage{
		ProductID: productID,
		Path:      storage.URL(key),
		Key:       key,
	}
	if err := s.products.WithTx(s.db.WithContext(ctx)).SaveImage(image); err != nil {
		_ = storage.Delete(key)
		return nil, err
	}
	_ = cache.Forget(productCacheKey(productID))
	return image, nil
}

// DetachImage deletes an image record and the underlying file.
func (s *ProductsService) DetachImage(ctx context.Context, productID, imageID uint) error {
	image, err := s.products.WithTx(s.db.WithContext(ctx)).FindImageByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Image not found")
		}
		return err
	}
	if image.ProductID != productID {
		return apperr.NotFound("Image not found")
	}

	if err := s.products.WithTx(s.db.WithContext(ctx)).DeleteImage(imageID); err != nil {
		return err
	}
	if image.Key != "" {
		_ = storage.Delete(image.Key)
	}
	_ = cache.Forget(productCacheKey(productID))
	return nil
}
