package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// OrderFilter is the typed optional-filter set for the admin order listing.
type OrderFilter struct {
	Status   models.OrderStatus
	MinTotal *float64
	MaxTotal *float64
	MinDate  *time.Time
	MaxDate  *time.Time
	Page     int
	Limit    int
}

// OrderRepository handles database operations for Order and OrderItem.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create persists an order together with its items in one insert chain.
// Callers are expected to wrap this in a transaction along with the cart
// clearing, so the cart-to-order conversion is all-or-nothing.
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// FindByID loads an order with its items and owning client.
func (r *OrderRepository) FindByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Client").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads an order row (items included) under a row-level
// lock, serialising concurrent payment attempts for the same order. Must run
// inside a transaction.
func (r *OrderRepository) FindByIDForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	err := orm.LockForUpdate(r.db).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.Where("order_id = ?", id).Order("id").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByClientID returns every order owned by a client, newest first.
func (r *OrderRepository) FindByClientID(clientID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("client_id = ?", clientID).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// FindMany returns one page of orders matching the filter.
func (r *OrderRepository) FindMany(f OrderFilter) ([]models.Order, orm.Pagination, error) {
	query := r.db.Model(&models.Order{}).Preload("Items").Order("orders.id DESC")

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.MinTotal != nil {
		query = query.Where("total >= ?", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		query = query.Where("total <= ?", *f.MaxTotal)
	}
	if f.MinDate != nil {
		query = query.Where("created_at >= ?", *f.MinDate)
	}
	if f.MaxDate != nil {
		query = query.Where("created_at <= ?", *f.MaxDate)
	}

	var orders []models.Order
	pagination, err := orm.Paginate(query, f.Page, f.Limit, &orders)
	return orders, pagination, err
}

// UpdateStatus sets the order's status.
func (r *OrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Update("status", status).Error
}

// DeleteByID removes an order and its items.
func (r *OrderRepository) DeleteByID(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Order{}, id).Error
	})
}

// CountBetween counts orders created inside the window, optionally limited
// to orders containing the given product. Used by the sales report.
func (r *OrderRepository) CountBetween(start, end time.Time, productID *uint) (int64, error) {
	query := r.db.Model(&models.Order{}).
		Where("orders.created_at >= ? AND orders.created_at <= ?", start, end)

	if productID != nil {
		query = query.
			Joins("JOIN order_items ON order_items.order_id = orders.id").
			Where("order_items.product_id = ?", *productID).
			Distinct("orders.id")
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}
