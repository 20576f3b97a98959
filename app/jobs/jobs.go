// Package jobs defines the background jobs the queue workers run.
package jobs

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/pkg/queue"
)

var db *gorm.DB

// Boot wires the database handle and registers every job type so workers
// can decode queued payloads back into runnable jobs. Registration names
// must match the %T of the dispatched value.
func Boot(d *gorm.DB) {
	db = d
	queue.Register("*jobs.SalesReportJob", func() queue.Job { return &SalesReportJob{} })
}
