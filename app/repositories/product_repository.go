package repositories

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// ProductFilter is the typed optional-filter set for product listings.
// Zero values mean "not filtered".
type ProductFilter struct {
	Name        string
	Description string
	MinPrice    *float64
	MaxPrice    *float64
	MinStock    *int
	MaxStock    *int
	Status      *bool
	Page        int
	Limit       int
}

// ProductRepository handles database operations for Product and its images.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// FindByID looks up a product by primary key, images included.
func (r *ProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Images").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads a product row under a row-level lock. Must run
// inside a transaction; the lock is held until that transaction ends.
func (r *ProductRepository) FindByIDForUpdate(id uint) (*models.Product, error) {
	var product models.Product
	err := orm.LockForUpdate(r.db).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindMany returns one page of products matching the filter.
func (r *ProductRepository) FindMany(f ProductFilter) ([]models.Product, orm.Pagination, error) {
	query := r.db.Model(&models.Product{}).Preload("Images")

	if f.Name != "" {
		query = query.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.Description != "" {
		query = query.Where("description LIKE ?", "%"+f.Description+"%")
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinStock != nil {
		query = query.Where("stock >= ?", *f.MinStock)
	}
	if f.MaxStock != nil {
		query = query.Where("stock <= ?", *f.MaxStock)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}

	var products []models.Product
	pagination, err := orm.Paginate(query, f.Page, f.Limit, &products)
	return products, pagination, err
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// DeleteByID removes a product and, via FK constraint, its images.
func (r *ProductRepository) DeleteByID(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// DecrementStock lowers a product's stock by quantity as a conditional
// update: the WHERE clause refuses the write when it would drive stock
// negative. Returns gorm.ErrRecordNotFound-free (0, nil) semantics via the
// affected-row count, which the caller must check.
func (r *ProductRepository) DecrementStock(id uint, quantity int) (int64, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	return res.RowsAffected, res.Error
}

// SaveImage attaches an uploaded image record to a product.
func (r *ProductRepository) SaveImage(image *models.ProductImage) error {
	return r.db.Create(image).Error
}

// FindImageByID looks up an image record by primary key.
func (r *ProductRepository) FindImageByID(id uint) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes an image record.
func (r *ProductRepository) DeleteImage(id uint) error {
	return r.db.Delete(&models.ProductImage{}, id).Error
}
