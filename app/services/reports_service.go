package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
	"github.com/shashiranjanraj/shopctl/pkg/storage"
)

// GenerateReportInput selects the window and optional product focus of a
// sales report. Reference defaults to now; the window extends backwards
// from it by the chosen period.
type GenerateReportInput struct {
	Period    models.ReportPeriod `json:"period" validate:"required"`
	ProductID *uint               `json:"product_id"`
	Reference *time.Time          `json:"reference"`
}

// ReportsService aggregates sales into persisted CSV reports.
type ReportsService struct {
	db      *gorm.DB
	reports *repositories.ReportRepository
	orders  *repositories.OrderRepository
}

func NewReportsService(db *gorm.DB) *ReportsService {
	return &ReportsService{
		db:      db,
		reports: repositories.NewReportRepository(db),
		orders:  repositories.NewOrderRepository(db),
	}
}

// Window converts a period and reference time into a [start, end] range.
func Window(period models.ReportPeriod, reference time.Time) (time.Time, time.Time) {
	end := reference
	switch period {
	case models.ReportPeriodDaily:
		return end.AddDate(0, 0, -1), end
	case models.ReportPeriodWeekly:
		return end.AddDate(0, 0, -7), end
	case models.ReportPeriodMonthly:
		return end.AddDate(0, -1, 0), end
	default:
		return end.AddDate(-1, 0, 0), end
	}
}

// Generate builds a sales report for the window, writes it to storage as CSV
// and records it. It runs synchronously; the queued job wraps it.
func (s *ReportsService) Generate(ctx context.Context, in GenerateReportInput) (*models.Report, error) {
	if !in.Period.Valid() {
		return nil, apperr.BadRequest("Invalid report period")
	}

	reference := time.Now()
	if in.Reference != nil {
		reference = *in.Reference
	}
	start, end := Window(in.Period, reference)

	tx := s.db.WithContext(ctx)

	rows, err := s.reports.WithTx(tx).SalesData(start, end, in.ProductID)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orders.WithTx(tx).CountBetween(start, end, in.ProductID)
	if err != nil {
		return nil, err
	}

	totalSales := decimal.Zero
	for _, row := range rows {
		totalSales = totalSales.Add(row.TotalRevenue)
	}

	path := fmt.Sprintf("reports/%s-%s.csv", in.Period, uuid.NewString())
	if err := storage.Put(path, renderCSV(rows, start, end, totalOrders, totalSales)); err != nil {
		return nil, err
	}

	report := &models.Report{
		Period:      in.Period,
		StartDate:   &start,
		EndDate:     &end,
		ProductID:   in.ProductID,
		TotalSales:  totalSales,
		TotalOrders: totalOrders,
		Path:        path,
	}
	if err := s.reports.WithTx(tx).Create(report); err != nil {
		return nil, err
	}
	return report, nil
}

func renderCSV(rows []repositories.SalesRow, start, end time.Time, totalOrders int64, totalSales decimal.Decimal) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"product_id", "product_name", "total_quantity", "total_revenue"})
	for _, row := range rows {
		_ = w.Write([]string{
			fmt.Sprint(row.ProductID),
			row.ProductName,
			fmt.Sprint(row.TotalQuantity),
			row.TotalRevenue.StringFixed(2),
		})
	}
	_ = w.Write([]string{})
	_ = w.Write([]string{"window_start", start.Format(time.RFC3339)})
	_ = w.Write([]string{"window_end", end.Format(time.RFC3339)})
	_ = w.Write([]string{"total_orders", fmt.Sprint(totalOrders)})
	_ = w.Write([]string{"total_sales", totalSales.StringFixed(2)})

	w.Flush()
	return buf.Bytes()
}

// GetAll lists generated reports, newest first.
func (s *ReportsService) GetAll(ctx context.Context, page, limit int) ([]models.Report, orm.Pagination, error) {
	return s.reports.WithTx(s.db.WithContext(ctx)).All(page, limit)
}

// Download fetches the stored CSV for a report.
func (s *ReportsService) Download(ctx context.Context, id uint) (*models.Report, []byte, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperr.NotFound("Report not found")
		}
		return nil, nil, err
	}

	content, err := storage.Get(report.Path)
	if err != nil {
		return nil, nil, apperr.NotFound("Report file is missing")
	}
	return &report, content, nil
}
