package repositories

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// SalesRow is one aggregated line of a sales report: how much of a product
// was sold (by paid-or-created orders) inside the window.
type SalesRow struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// ReportRepository handles database operations for Report plus the sales
// aggregation query the report generator runs.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ReportRepository) WithTx(tx *gorm.DB) *ReportRepository {
	return &ReportRepository{db: tx}
}

// Create persists a generated report record.
func (r *ReportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// All returns one page of past reports, newest first.
func (r *ReportRepository) All(page, limit int) ([]models.Report, orm.Pagination, error) {
	var reports []models.Report
	query := r.db.Model(&models.Report{}).Order("id DESC")
	pagination, err := orm.Paginate(query, page, limit, &reports)
	return reports, pagination, err
}

// SalesData aggregates order items per product for orders created inside the
// window. productID narrows the report to a single product when non-nil.
func (r *ReportRepository) SalesData(start, end time.Time, productID *uint) ([]SalesRow, error) {
	query := r.db.Model(&models.OrderItem{}).
		Select("order_items.product_id, products.name AS product_name, SUM(order_items.quantity) AS total_quantity, SUM(order_items.subtotal) AS total_revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.created_at >= ? AND orders.created_at <= ?", start, end).
		Group("order_items.product_id, products.name").
		Order("total_revenue DESC")

	if productID != nil {
		query = query.Where("order_items.product_id = ?", *productID)
	}

	var rows []SalesRow
	err := query.Scan(&rows).Error
	return rows, err
}
