package repositories

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// CartLineRow is a cart item joined with the product fields the cart needs.
type CartLineRow struct {
	ProductID     uint            `json:"product_id"`
	Quantity      int             `json:"quantity"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ProductStatus bool            `json:"product_status"`
}

// CartFilter is the typed optional-filter set for the admin cart listing.
type CartFilter struct {
	MinDate     *time.Time
	MaxDate     *time.Time
	MinPrice    *float64
	MaxPrice    *float64
	ProductName string
	Page        int
	Limit       int
}

// CartRepository handles database operations for CartItem.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{db: tx}
}

// FindLine looks up the cart line for a (client, product) pair.
func (r *CartRepository) FindLine(clientID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("client_id = ? AND product_id = ?", clientID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindLineForUpdate loads the cart line under a row-level lock so concurrent
// merges for the same pair serialise instead of losing updates. Must run
// inside a transaction.
func (r *CartRepository) FindLineForUpdate(clientID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := orm.LockForUpdate(r.db).
		Where("client_id = ? AND product_id = ?", clientID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateLine inserts a new cart line. The composite unique index rejects a
// duplicate (client, product) pair created by a concurrent call.
func (r *CartRepository) CreateLine(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateLineQuantity sets the quantity of an existing line.
func (r *CartRepository) UpdateLineQuantity(id uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", id).
		UpdateColumn("quantity", quantity).Error
}

// DeleteLine hard-deletes a cart line.
func (r *CartRepository) DeleteLine(id uint) error {
	return r.db.Unscoped().Delete(&models.CartItem{}, id).Error
}

// ListLinesForUpdate loads a client's raw cart lines under row-level locks,
// serialising concurrent checkouts of the same cart. Must run inside a
// transaction.
func (r *CartRepository) ListLinesForUpdate(clientID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := orm.LockForUpdate(r.db).
		Where("client_id = ?", clientID).
		Order("id").
		Find(&items).Error
	return items, err
}

// ListLines returns every line for a client joined with its product.
func (r *CartRepository) ListLines(clientID uint) ([]CartLineRow, error) {
	var rows []CartLineRow
	err := r.db.Model(&models.CartItem{}).
		Select("cart_items.product_id, cart_items.quantity, products.name AS product_name, products.price, products.stock, products.status AS product_status").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.client_id = ?", clientID).
		Order("cart_items.id").
		Scan(&rows).Error
	return rows, err
}

// ClearCart hard-deletes every line for a client. Runs inside the order
// creation transaction so nobody observes a half-cleared cart.
func (r *CartRepository) ClearCart(clientID uint) error {
	return r.db.Unscoped().Where("client_id = ?", clientID).Delete(&models.CartItem{}).Error
}

// FindMany returns one page of cart items for the admin listing.
func (r *CartRepository) FindMany(f CartFilter) ([]models.CartItem, orm.Pagination, error) {
	query := r.db.Model(&models.CartItem{}).
		Joins("JOIN products ON products.id = cart_items.product_id")

	if f.MinDate != nil {
		query = query.Where("cart_items.created_at >= ?", *f.MinDate)
	}
	if f.MaxDate != nil {
		query = query.Where("cart_items.created_at <= ?", *f.MaxDate)
	}
	if f.MinPrice != nil {
		query = query.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.ProductName != "" {
		query = query.Where("products.name LIKE ?", "%"+f.ProductName+"%")
	}

	var items []models.CartItem
	pagination, err := orm.Paginate(query, f.Page, f.Limit, &items)
	return items, pagination, err
}
