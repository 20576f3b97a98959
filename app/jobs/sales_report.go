package jobs

import (
	"context"
	"time"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/logger"
)

// SalesReportJob generates one sales report in the background. Admin report
// requests dispatch it instead of blocking the HTTP request on the
// aggregation query and the storage write.
type SalesReportJob struct {
	Period    models.ReportPeriod `json:"period"`
	ProductID *uint               `json:"product_id,omitempty"`
	Reference *time.Time          `json:"reference,omitempty"`
}

func (j *SalesReportJob) Handle() error {
	report, err := services.NewReportsService(db).Generate(context.Background(), services.GenerateReportInput{
		Period:    j.Period,
		ProductID: j.ProductID,
		Reference: j.Reference,
	})
	if err != nil {
		return err
	}

	logger.Info("sales report generated", "report_id", report.ID, "period", report.Period, "path", report.Path)
	return nil
}
