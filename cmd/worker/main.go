package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stockroom-wms/stockroom/internal/admin/products"
	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
	"github.com/stockroom-wms/stockroom/internal/app"
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/platform/cache"
	"github.com/stockroom-wms/stockroom/internal/platform/db"
	"github.com/stockroom-wms/stockroom/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	apiClient := backend.NewClient(cfg.BackendURL)
	productRes := backend.NewResource[products.Product](apiClient, "product")
	supplierRes := backend.NewResource[suppliers.Supplier](apiClient, "supplier")
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogTTL)
	catalogService := catalog.NewService(productRes, supplierRes, catalogCache, logger)

	refresher := jobs.NewCatalogRefresher(catalogService, logger)
	maintainer := jobs.NewMaintainer(pool, jobs.DefaultRetention, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCatalogRefresh, Handler: refresher.Handle},
			{Type: jobs.TaskMaintenance, Handler: maintainer.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: jobs.NewCatalogRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 3 * * *", Task: jobs.NewMaintenanceTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
