package controllers

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/jobs"
	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
	"github.com/shashiranjanraj/shopctl/pkg/queue"
)

type ReportsController struct {
	reports *services.ReportsService
}

func NewReportsController(db *gorm.DB) *ReportsController {
	return &ReportsController{reports: services.NewReportsService(db)}
}

// Generate queues a sales report. Workers pick it up; the response only
// acknowledges the dispatch.
func (rc *ReportsController) Generate(c *ctx.Context) {
	var in struct {
		Period    models.ReportPeriod `json:"period" validate:"required"`
		ProductID *uint               `json:"product_id"`
	}
	if !c.BindJSON(&in) {
		return
	}
	if !in.Period.Valid() {
		c.Error(http.StatusBadRequest, "Invalid report period")
		return
	}

	if err := queue.Dispatch(&jobs.SalesReportJob{Period: in.Period, ProductID: in.ProductID}); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusAccepted, "Report generation queued", nil)
}

func (rc *ReportsController) Index(c *ctx.Context) {
	page, limit := pageParams(c)
	reports, pagination, err := rc.reports.GetAll(c.Context(), page, limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"items": reports, "pagination": pagination})
}

// Download streams the stored CSV.
func (rc *ReportsController) Download(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Report not found")
		return
	}

	report, content, err := rc.reports.Download(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}

	c.SetHeader("Content-Type", "text/csv")
	c.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=report-%d.csv", report.ID))
	c.W.WriteHeader(http.StatusOK)
	c.W.Write(content) //nolint:errcheck
}
