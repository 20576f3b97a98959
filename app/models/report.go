package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportPeriod is the aggregation window of a sales report.
type ReportPeriod string

const (
	ReportPeriodDaily   ReportPeriod = "DAILY"
	ReportPeriodWeekly  ReportPeriod = "WEEKLY"
	ReportPeriodMonthly ReportPeriod = "MONTHLY"
	ReportPeriodYearly  ReportPeriod = "YEARLY"
)

// Valid reports whether p is a known period value.
func (p ReportPeriod) Valid() bool {
	switch p {
	case ReportPeriodDaily, ReportPeriodWeekly, ReportPeriodMonthly, ReportPeriodYearly:
		return true
	}
	return false
}

// Report records one generated sales report and where its CSV file lives.
type Report struct {
	gorm.Model
	Period      ReportPeriod    `gorm:"size:20;not null" json:"period"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	ProductID   *uint           `json:"product_id,omitempty"`
	TotalSales  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_sales"`
	TotalOrders int64           `gorm:"not null" json:"total_orders"`
	Path        string          `gorm:"size:512;not null" json:"path"`
}
