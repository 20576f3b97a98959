// Package server boots the whole application: config, logging sinks,
// database, cache, storage, queue workers, scheduler and the HTTP listener.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shashiranjanraj/shopctl/app/jobs"
	"github.com/shashiranjanraj/shopctl/app/listeners"
	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/routes"
	"github.com/shashiranjanraj/shopctl/config"
	"github.com/shashiranjanraj/shopctl/database/seeders"
	"github.com/shashiranjanraj/shopctl/pkg/cache"
	"github.com/shashiranjanraj/shopctl/pkg/database"
	"github.com/shashiranjanraj/shopctl/pkg/logger"
	"github.com/shashiranjanraj/shopctl/pkg/migration"
	"github.com/shashiranjanraj/shopctl/pkg/queue"
	"github.com/shashiranjanraj/shopctl/pkg/router"
	"github.com/shashiranjanraj/shopctl/pkg/schedule"
	"github.com/shashiranjanraj/shopctl/pkg/storage"
)

// Boot prepares every subsystem short of the HTTP listener. It is shared by
// the server and the worker/scheduler commands.
func Boot() error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.LogMongoURI(); uri != "" {
		sink, err := logger.NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			logger.UseSink(sink)
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}
	if err := migration.New(database.DB).Run(); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("cache disabled", "error", err)
	}
	storage.Connect()

	// Redis-backed queue when the cache connection is live, otherwise the
	// in-process driver keeps jobs working in dev and tests.
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	} else {
		queue.SetDriver(queue.NewMemoryDriver())
	}
	queue.UseDB(database.DB)

	jobs.Boot(database.DB)
	listeners.Boot(database.DB)
	registerSchedule()

	return nil
}

// registerSchedule declares the recurring tasks.
func registerSchedule() {
	schedule.Daily().Name("reports.daily_sales").WithoutOverlapping().Run(func() {
		if err := queue.Dispatch(&jobs.SalesReportJob{Period: models.ReportPeriodDaily}); err != nil {
			logger.Error("schedule: dispatch daily sales report", "error", err)
		}
	})
}

// Start boots everything and serves HTTP until SIGINT/SIGTERM, then drains
// in-flight requests.
func Start() error {
	if err := Boot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seeders.RunAll(database.DB); err != nil {
		return err
	}

	queue.StartWorkers(ctx, workerCount())
	schedule.Start(ctx)

	r := router.New()
	routes.RegisterAPI(r, database.DB)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func workerCount() int {
	n, err := strconv.Atoi(config.Get("QUEUE_WORKERS", "5"))
	if err != nil || n < 1 {
		return 5
	}
	return n
}
